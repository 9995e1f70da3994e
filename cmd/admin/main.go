// Package main provides role management utilities for the Teachers Blog.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spw3bt3ch/Teachers-blog/internal/config"
	"github.com/spw3bt3ch/Teachers-blog/internal/database"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <username>          - Grant the admin role")
	fmt.Println("  go run ./cmd/admin demote <username>           - Reset to the teacher role")
	fmt.Println("  go run ./cmd/admin set-role <username> <role>  - Assign teacher, moderator or admin")
	fmt.Println("  go run ./cmd/admin list-admins                 - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleTeacher
		}
		setRole(ctx, db, os.Args[2], role)

	case "set-role":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		role := models.Role(models.NormalizeIdentity(os.Args[3]))
		if !role.Valid() {
			fmt.Printf("Unknown role: %s\n", os.Args[3])
			os.Exit(1)
		}
		setRole(ctx, db, os.Args[2], role)

	case "list-admins":
		listAdmins(ctx, db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func setRole(ctx context.Context, db *gorm.DB, username string, role models.Role) {
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", models.NormalizeIdentity(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User %s not found\n", username)
		} else {
			log.Printf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	if err := db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	// Existing tokens keep the old role until they expire.
	fmt.Printf("✅ %s (ID: %d) is now %s; they must log in again for it to apply\n", user.Username, user.ID, role)
}

func listAdmins(ctx context.Context, db *gorm.DB) {
	var admins []models.User
	if err := db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}

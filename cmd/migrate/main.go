// Command migrate applies, inspects and rolls back the blog schema.
//
//	go run ./cmd/migrate up          apply pending SQL migrations
//	go run ./cmd/migrate auto        run gorm AutoMigrate over the models
//	go run ./cmd/migrate status      print the schema plan and pending migrations
//	go run ./cmd/migrate down <n>    roll back migration n
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spw3bt3ch/Teachers-blog/internal/config"
	"github.com/spw3bt3ch/Teachers-blog/internal/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|auto|status|down> [version]")
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

	if err := run(context.Background(), db, cfg, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error {
	switch args[0] {
	case "up":
		return database.RunMigrations(ctx, db)

	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		return database.ApplySchema(ctx, db, cfg)

	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("mode %s: sql=%t automigrate=%t, %d applied\n", status.Mode, status.SQL, status.AutoMigrate, len(status.Applied))
		for _, m := range status.Pending {
			fmt.Println("pending", m)
		}
		return nil

	case "down":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return database.RollbackMigration(ctx, db, version)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// Package bootstrap wires the shared runtime (database, schema, Redis, root admin).
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spw3bt3ch/Teachers-blog/internal/cache"
	"github.com/spw3bt3ch/Teachers-blog/internal/config"
	"github.com/spw3bt3ch/Teachers-blog/internal/database"
	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const rootAdminUsername = "admin"

// InitRuntime connects to the database (applying the schema), connects Redis and
// makes sure the configured root admin exists.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap root admin: %w", err)
	}

	return db, r, nil
}

// EnsureRootAdmin creates the ROOT_ADMIN_EMAIL account with the admin role, or
// promotes it if it already exists. Nothing happens when the email is unset.
func EnsureRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	email := models.NormalizeIdentity(cfg.RootAdminEmail)
	if email == "" {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if cfg.RootAdminPassword == "" {
				return errors.New("ROOT_ADMIN_PASSWORD must be set when ROOT_ADMIN_EMAIL is set")
			}
			cost := cfg.BcryptCost
			if cost == 0 {
				cost = bcrypt.DefaultCost
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.RootAdminPassword), cost)
			if err != nil {
				return fmt.Errorf("hash root password: %w", err)
			}
			root = models.User{
				Email:    email,
				Username: rootUsername(tx, email),
				Name:     "Administrator",
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
			middleware.Logger.InfoContext(ctx, "root admin created", slog.String("email", email))
		case findErr != nil:
			return findErr
		case root.Role != models.RoleAdmin:
			if err := tx.Model(&models.User{}).Where("id = ?", root.ID).Update("role", models.RoleAdmin).Error; err != nil {
				return err
			}
			cache.InvalidateUser(ctx, root.ID)
			middleware.Logger.InfoContext(ctx, "root admin promoted", slog.String("email", email))
		}
		return nil
	})
}

// rootUsername prefers "admin" and falls back to the email local part.
func rootUsername(tx *gorm.DB, email string) string {
	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", rootAdminUsername).Count(&count).Error; err == nil && count == 0 {
		return rootAdminUsername
	}
	local, _, _ := strings.Cut(email, "@")
	return local + "_admin"
}

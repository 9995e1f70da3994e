package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spw3bt3ch/Teachers-blog/internal/config"
	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values. Hybrid runs the SQL migrations and, outside
// production, AutoMigrate on top of them.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan says which schema steps a configuration runs.
type SchemaPlan struct {
	Mode        string
	SQL         bool
	AutoMigrate bool
}

func planSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: cfg.DBSchemaMode}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	production := strings.EqualFold(strings.TrimSpace(cfg.Env), "production")

	switch plan.Mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.AutoMigrate = true, !production
	case SchemaModeAuto:
		if production && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto in production needs DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true")
		}
		plan.AutoMigrate = true
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return err
		}
	}
	if plan.AutoMigrate {
		middleware.Logger.InfoContext(ctx, "running gorm automigrate", slog.String("mode", plan.Mode))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaStatus is the plan for cfg plus the migration bookkeeping it would act on.
type SchemaStatus struct {
	SchemaPlan
	Applied []int
	Pending []Migration
}

// GetSchemaStatus reports what ApplySchema would do without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan}
	if !plan.SQL {
		return status, nil
	}

	if status.Applied, err = appliedVersions(ctx, db); err != nil {
		return nil, err
	}
	for _, m := range migrations {
		if !slices.Contains(status.Applied, m.Version) {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

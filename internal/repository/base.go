// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/observability"

	"gorm.io/gorm"
)

var dbMetrics = observability.NewDatabaseMetrics()

// instrument opens a repository span and starts the latency timer.
// The returned func must be called exactly once with the operation's final error.
func instrument(ctx context.Context, table, operation string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, table, operation)
	done := dbMetrics.TrackQuery(operation, table)
	return ctx, func(err error) {
		done()
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !models.HasCode(err, models.CodeNotFound) {
			observability.RecordError(ctx, err)
		}
		span.End()
	}
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// notFoundOr maps gorm.ErrRecordNotFound onto notFound and wraps anything else as internal.
func notFoundOr(err error, notFound *models.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return models.NewInternalError(err)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func preloadAuthor(db *gorm.DB) *gorm.DB {
	return db.Select(models.AuthorColumns)
}

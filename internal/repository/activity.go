package repository

import (
	"context"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"gorm.io/gorm"
)

// ActivityFilter narrows activity listings. Zero values mean "no filter".
type ActivityFilter struct {
	Type   models.ActivityType
	UserID uint
}

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter ActivityFilter, limit, offset int) ([]models.Activity, error)
	Count(ctx context.Context, filter ActivityFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
	GroupByType(ctx context.Context) ([]models.CountByKey, error)
	CountAll(ctx context.Context) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a new ActivityRepository implementation.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) (err error) {
	ctx, done := instrument(ctx, "activities", "Create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Omit("User").Create(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) applyFilter(db *gorm.DB, f ActivityFilter) *gorm.DB {
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.UserID != 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	return db
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter, limit, offset int) (activities []models.Activity, err error) {
	ctx, done := instrument(ctx, "activities", "List")
	defer func() { done(err) }()

	err = r.applyFilter(r.db.WithContext(ctx), filter).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "username", "role") }).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}

func (r *activityRepository) Count(ctx context.Context, filter ActivityFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Activity{}), filter).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *activityRepository) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	return r.List(ctx, ActivityFilter{}, clampLimit(limit, 10, 100), 0)
}

func (r *activityRepository) GroupByType(ctx context.Context) ([]models.CountByKey, error) {
	var rows []models.CountByKey
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("type AS group_key, COUNT(*) AS total").
		Group("type").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *activityRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Activity{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

package repository

import (
	"context"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository stores at most one reaction per user and target.
type ReactionRepository interface {
	SetForPost(ctx context.Context, userID, postID uint, t models.ReactionType) error
	SetForComment(ctx context.Context, userID, commentID uint, t models.ReactionType) error
	RemoveForPost(ctx context.Context, userID, postID uint) error
	RemoveForComment(ctx context.Context, userID, commentID uint) error
	CountsForPost(ctx context.Context, postID uint) (map[models.ReactionType]int64, error)
	CountsForComment(ctx context.Context, commentID uint) (map[models.ReactionType]int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository returns a new ReactionRepository implementation.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// upsert inserts the reaction or replaces the type of the existing one.
// column is the target column matching the unique index (post_id or comment_id).
func (r *reactionRepository) upsert(ctx context.Context, reaction *models.Reaction, column string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: column}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(reaction).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reactionRepository) SetForPost(ctx context.Context, userID, postID uint, t models.ReactionType) error {
	return r.upsert(ctx, &models.Reaction{Type: t, UserID: userID, PostID: &postID}, "post_id")
}

func (r *reactionRepository) SetForComment(ctx context.Context, userID, commentID uint, t models.ReactionType) error {
	return r.upsert(ctx, &models.Reaction{Type: t, UserID: userID, CommentID: &commentID}, "comment_id")
}

func (r *reactionRepository) remove(ctx context.Context, userID uint, column string, targetID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND "+column+" = ?", userID, targetID).
		Delete(&models.Reaction{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reactionRepository) RemoveForPost(ctx context.Context, userID, postID uint) error {
	return r.remove(ctx, userID, "post_id", postID)
}

func (r *reactionRepository) RemoveForComment(ctx context.Context, userID, commentID uint) error {
	return r.remove(ctx, userID, "comment_id", commentID)
}

func (r *reactionRepository) counts(ctx context.Context, column string, targetID uint) (map[models.ReactionType]int64, error) {
	var rows []models.CountByKey
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("type AS group_key, COUNT(*) AS total").
		Where(column+" = ?", targetID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ReactionType]int64, len(rows))
	for _, row := range rows {
		counts[models.ReactionType(row.Key)] = row.Count
	}
	return counts, nil
}

func (r *reactionRepository) CountsForPost(ctx context.Context, postID uint) (map[models.ReactionType]int64, error) {
	return r.counts(ctx, "post_id", postID)
}

func (r *reactionRepository) CountsForComment(ctx context.Context, commentID uint) (map[models.ReactionType]int64, error) {
	return r.counts(ctx, "comment_id", commentID)
}

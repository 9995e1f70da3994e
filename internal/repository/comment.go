package repository

import (
	"context"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	CountAll(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := instrument(ctx, "comments", "Create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author", preloadAuthor).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, models.NewNotFoundMessage("Comment not found"))
	}
	return &comment, nil
}

// ListTopLevel returns comments without a parent, newest first.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint) (comments []*models.Comment, err error) {
	ctx, done := instrument(ctx, "comments", "ListTopLevel")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).
		Preload("Author", preloadAuthor).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListReplies returns the replies of every parent in one query, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []uint) (replies []*models.Comment, err error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	ctx, done := instrument(ctx, "comments", "ListReplies")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).
		Preload("Author", preloadAuthor).
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

// Delete removes the comment, its direct replies and every reaction on them.
func (r *commentRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := instrument(ctx, "comments", "Delete")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&models.Comment{}).Select("id").Where("parent_id = ?", id)
		if err := tx.Where("comment_id = ? OR comment_id IN (?)", id, replyIDs).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, models.NewNotFoundMessage("Comment not found"))
	}
	return nil
}

func (r *commentRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/spw3bt3ch/Teachers-blog/internal/cache"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows List and Count. Zero values mean "no filter".
type PostFilter struct {
	PublishedOnly bool
	Category      string // id or slug
	Tag           string // slug
	Featured      bool
	Search        string
	AuthorID      uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	Update(ctx context.Context, post *models.Post, fields map[string]any, tags []models.Tag) error
	Delete(ctx context.Context, post *models.Post) error
	IncrementViews(ctx context.Context, id uint) (int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountByPublished(ctx context.Context, published bool) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, logger: observability.NewRepoLogger("posts")}
}

func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", preloadAuthor).
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") })
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, "posts", "Create")
	defer func() { done(err) }()

	// tags are resolved by the caller; only the join rows are written here
	if err := r.db.WithContext(ctx).Omit("Tags.*").Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "slug": post.Slug})
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, models.NewNotFoundMessage("Post not found"))
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (post *models.Post, err error) {
	ctx, done := instrument(ctx, "posts", "GetBySlug")
	defer func() { done(err) }()

	var p models.Post
	if err := r.withDetails(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, notFoundOr(err, models.NewNotFoundMessage("Post not found"))
	}
	return &p, nil
}

func (r *postRepository) applyFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.PublishedOnly {
		db = db.Where("posts.published = ?", true)
	}
	if f.Featured {
		db = db.Where("posts.featured = ?", true)
	}
	if f.AuthorID != 0 {
		db = db.Where("posts.author_id = ?", f.AuthorID)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		if id, err := strconv.ParseUint(c, 10, 64); err == nil {
			db = db.Where("posts.category_id = ?", id)
		} else {
			db = db.Where("posts.category_id IN (?)",
				r.db.Model(&models.Category{}).Select("id").Where("slug = ?", strings.ToLower(c)))
		}
	}
	if t := strings.TrimSpace(f.Tag); t != "" {
		db = db.Where("posts.id IN (?)",
			r.db.Table("post_tags").
				Select("post_tags.post_id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.slug = ?", strings.ToLower(t)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.excerpt) LIKE ?", like, like, like)
	}
	return db
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) (posts []*models.Post, err error) {
	ctx, done := instrument(ctx, "posts", "List")
	defer func() { done(err) }()

	err = r.withDetails(r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// Update writes fields and, when tags is non-nil, replaces the tag set.
func (r *postRepository) Update(ctx context.Context, post *models.Post, fields map[string]any, tags []models.Tag) (err error) {
	ctx, done := instrument(ctx, "posts", "Update")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(post).Updates(fields).Error; err != nil {
				return err
			}
		}
		if tags != nil {
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	r.logger.LogUpdate(ctx, map[string]any{"post_id": post.ID, "fields": len(fields)})
	return nil
}

// Delete removes the post together with its comments, reactions and tag links.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, "posts", "Delete")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID)
		if err := tx.Where("post_id = ? OR comment_id IN (?)", post.ID, commentIDs).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	r.logger.LogDelete(ctx, map[string]any{"post_id": post.ID, "slug": post.Slug})
	return nil
}

// IncrementViews bumps the counter atomically and returns the new value.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).Select("views").Where("id = ?", id).Row().Scan(&views)
	})
	if err != nil {
		return 0, notFoundOr(err, models.NewNotFoundMessage("Post not found"))
	}
	observability.PostViews.Inc()
	return views, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByPublished(ctx context.Context, published bool) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("published = ?", published).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spw3bt3ch/Teachers-blog/internal/activity"
	"github.com/spw3bt3ch/Teachers-blog/internal/cache"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
	"github.com/spw3bt3ch/Teachers-blog/internal/validation"
)

const (
	maxTitleLen   = 200
	maxExcerptLen = 300
	maxContentLen = 100000
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	reactionRepo repository.ReactionRepository
	activity     activity.Recorder
}

type CreatePostInput struct {
	Actor      *policy.Actor
	Title      string
	Content    string
	Excerpt    string
	CategoryID *uint
	Tags       []string
	Featured   bool
	Published  bool
}

type ListPostsInput struct {
	Page     int
	Limit    int
	Category string
	Tag      string
	Search   string
	Featured bool
	AuthorID uint
}

// PostPage is one page of published posts.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// UpdatePostInput is a partial patch. Nil pointers and a nil Tags slice leave the
// field unchanged; empty Title or Content are ignored. CategoryID 0 clears the category.
type UpdatePostInput struct {
	Actor      *policy.Actor
	Slug       string
	Title      *string
	Content    *string
	Excerpt    *string
	CategoryID *uint
	Tags       []string
	Featured   *bool
	Published  *bool
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	reactionRepo repository.ReactionRepository,
	recorder activity.Recorder,
) *PostService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		reactionRepo: reactionRepo,
		activity:     recorder,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := policy.Authorize(in.Actor, policy.Post(0), policy.ActionCreate).Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	if err := checkPostLengths(title, content, in.Excerpt); err != nil {
		return nil, err
	}

	slug := validation.Slugify(title)
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError("Title must contain letters or numbers")
	}
	exists, err := s.postRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("Post with this title already exists")
	}

	categoryID, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      title,
		Slug:       slug,
		Content:    content,
		Excerpt:    strings.TrimSpace(in.Excerpt),
		Published:  in.Published,
		Featured:   in.Featured,
		AuthorID:   in.Actor.ID,
		CategoryID: categoryID,
	}
	if len(in.Tags) > 0 {
		tags, err := s.tagRepo.FirstOrCreateByNames(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
		cache.InvalidateTaxonomy(ctx)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, in.Actor.ID, models.ActivityPostCreated, activity.Options{
		PostID:   &post.ID,
		Details:  "Created post: " + post.Title,
		Metadata: map[string]any{"slug": post.Slug, "published": post.Published},
	})

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns a post by slug and counts the read. Drafts are only visible to
// their author and admins; everyone else gets NotFound.
func (s *PostService) GetPost(ctx context.Context, slug string, actor *policy.Actor) (*models.Post, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, models.NewNotFoundMessage("Post not found")
	}

	var post models.Post
	err := cache.Aside(ctx, cache.PostSlugKey(slug), &post, cache.PostTTL, func() error {
		p, err := s.postRepo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !post.Published && !policy.Authorize(actor, policy.Post(post.AuthorID), policy.ActionReadDraft).Allowed {
		return nil, models.NewNotFoundMessage("Post not found")
	}

	views, err := s.postRepo.IncrementViews(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Views = views

	if s.reactionRepo != nil {
		counts, err := s.reactionRepo.CountsForPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		post.Reactions = counts
	}
	return &post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	page, limit := normalizePage(in.Page, in.Limit, defaultPageLimit)
	filter := repository.PostFilter{
		PublishedOnly: true,
		Category:      strings.TrimSpace(in.Category),
		Tag:           strings.ToLower(strings.TrimSpace(in.Tag)),
		Featured:      in.Featured,
		Search:        strings.TrimSpace(in.Search),
		AuthorID:      in.AuthorID,
	}

	posts, err := s.postRepo.List(ctx, filter, limit, offsetFor(page, limit))
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Actor == nil || in.Actor.ID == 0 {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	post, err := s.postRepo.GetBySlug(ctx, normalizeSlug(in.Slug))
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(in.Actor, policy.Post(post.AuthorID), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			fields["title"] = title
		}
	}
	if in.Content != nil {
		if content := strings.TrimSpace(*in.Content); content != "" {
			fields["content"] = content
		}
	}
	if in.Excerpt != nil {
		fields["excerpt"] = strings.TrimSpace(*in.Excerpt)
	}
	if in.Featured != nil {
		fields["featured"] = *in.Featured
	}
	if in.Published != nil && *in.Published != post.Published {
		if err := policy.Authorize(in.Actor, policy.Post(post.AuthorID), policy.ActionPublish).Err(); err != nil {
			return nil, err
		}
		fields["published"] = *in.Published
	}
	if in.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}

	title, _ := fields["title"].(string)
	content, _ := fields["content"].(string)
	excerpt, _ := fields["excerpt"].(string)
	if err := checkPostLengths(title, content, excerpt); err != nil {
		return nil, err
	}

	var tags []models.Tag
	if in.Tags != nil {
		tags, err = s.tagRepo.FirstOrCreateByNames(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		cache.InvalidateTaxonomy(ctx)
	}

	if err := s.postRepo.Update(ctx, post, fields, tags); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(fields)+1)
	for k := range fields {
		changed = append(changed, k)
	}
	if in.Tags != nil {
		changed = append(changed, "tags")
	}
	s.activity.Log(ctx, in.Actor.ID, models.ActivityPostUpdated, activity.Options{
		PostID:   &updated.ID,
		Details:  "Updated post: " + updated.Title,
		Metadata: map[string]any{"slug": updated.Slug, "fields": changed},
	})
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, actor *policy.Actor, slug string) error {
	if actor == nil || actor.ID == 0 {
		return models.NewUnauthorizedError("Unauthorized")
	}
	post, err := s.postRepo.GetBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Post(post.AuthorID), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post); err != nil {
		return err
	}

	s.activity.Log(ctx, actor.ID, models.ActivityPostDeleted, activity.Options{
		PostID:   &post.ID,
		Details:  "Deleted post: " + post.Title,
		Metadata: map[string]any{"slug": post.Slug},
	})
	return nil
}

// normalizeSlug matches the lowercase form slugs are stored in.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// resolveCategory maps a requested category onto the stored value: nil stays nil,
// 0 clears it, anything else must exist.
func (s *PostService) resolveCategory(ctx context.Context, id *uint) (*uint, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

func checkPostLengths(title, content, excerpt string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 100000 characters)")
	}
	if utf8.RuneCountInString(strings.TrimSpace(excerpt)) > maxExcerptLen {
		return models.NewValidationError("Excerpt too long (max 300 characters)")
	}
	return nil
}

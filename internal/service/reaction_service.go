package service

import (
	"context"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
)

// ReactionService manages the single reaction a user may leave on a post or comment.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo, postRepo: postRepo, commentRepo: commentRepo}
}

func requireActor(actor *policy.Actor) error {
	if actor == nil || actor.ID == 0 {
		return models.NewUnauthorizedError("Unauthorized")
	}
	return nil
}

func parseReactionType(raw string) (models.ReactionType, error) {
	t := models.ReactionType(raw)
	if !t.Valid() {
		return "", models.NewValidationError("Invalid reaction type")
	}
	return t, nil
}

// ReactToPost sets the caller's reaction on a published post, replacing any earlier
// one, and returns the per-type counts.
func (s *ReactionService) ReactToPost(ctx context.Context, actor *policy.Actor, slug, reaction string) (map[models.ReactionType]int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, err := parseReactionType(reaction)
	if err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if err := s.reactionRepo.SetForPost(ctx, actor.ID, post.ID, t); err != nil {
		return nil, err
	}
	return s.reactionRepo.CountsForPost(ctx, post.ID)
}

func (s *ReactionService) RemovePostReaction(ctx context.Context, actor *policy.Actor, slug string) (map[models.ReactionType]int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if err := s.reactionRepo.RemoveForPost(ctx, actor.ID, post.ID); err != nil {
		return nil, err
	}
	return s.reactionRepo.CountsForPost(ctx, post.ID)
}

func (s *ReactionService) ReactToComment(ctx context.Context, actor *policy.Actor, commentID uint, reaction string) (map[models.ReactionType]int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, err := parseReactionType(reaction)
	if err != nil {
		return nil, err
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	if err := s.reactionRepo.SetForComment(ctx, actor.ID, commentID, t); err != nil {
		return nil, err
	}
	return s.reactionRepo.CountsForComment(ctx, commentID)
}

func (s *ReactionService) RemoveCommentReaction(ctx context.Context, actor *policy.Actor, commentID uint) (map[models.ReactionType]int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	if err := s.reactionRepo.RemoveForComment(ctx, actor.ID, commentID); err != nil {
		return nil, err
	}
	return s.reactionRepo.CountsForComment(ctx, commentID)
}

func (s *ReactionService) visiblePost(ctx context.Context, actor *policy.Actor, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		return nil, err
	}
	if !post.Published && !policy.Authorize(actor, policy.Post(post.AuthorID), policy.ActionReadDraft).Allowed {
		return nil, models.NewNotFoundMessage("Post not found")
	}
	return post, nil
}

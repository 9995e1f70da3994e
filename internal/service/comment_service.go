package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spw3bt3ch/Teachers-blog/internal/activity"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
)

const maxCommentLen = 10000

// CommentService keeps comments two levels deep: top-level comments on a post and
// replies to those. Replies are found by parent_id, never stored on the parent.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	activity    activity.Recorder
}

type CreateCommentInput struct {
	Actor    *policy.Actor
	PostID   uint
	ParentID *uint
	Content  string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	recorder activity.Recorder,
) *CommentService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		activity:    recorder,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := policy.Authorize(in.Actor, policy.Comment(0), policy.ActionCreate).Err(); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if content == "" || in.PostID == 0 {
		return nil, models.NewValidationError("Content and postId are required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	var parentID *uint
	if in.ParentID != nil && *in.ParentID != 0 {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return nil, models.NewNotFoundMessage("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Cannot reply to a reply")
		}
		parentID = &parent.ID
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: in.Actor.ID,
		PostID:   in.PostID,
		ParentID: parentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, in.Actor.ID, models.ActivityCommentCreated, activity.Options{
		PostID:    &comment.PostID,
		CommentID: &comment.ID,
		Details:   "Commented on post",
		Metadata:  map[string]any{"reply": parentID != nil},
	})

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	created.Replies = []*models.Comment{}
	return created, nil
}

// ListComments returns the top-level comments of a post, newest first, each with
// its replies oldest first. Replies come from a single parent_id IN query.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if postID == 0 {
		return nil, models.NewValidationError("postId is required")
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*models.Comment{}, nil
	}

	ids := make([]uint, len(comments))
	byID := make(map[uint]*models.Comment, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		c.Replies = []*models.Comment{}
		byID[c.ID] = c
	}

	replies, err := s.commentRepo.ListReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		if r.ParentID == nil {
			continue
		}
		if parent, ok := byID[*r.ParentID]; ok {
			r.Replies = []*models.Comment{}
			parent.Replies = append(parent.Replies, r)
		}
	}
	return comments, nil
}

func (s *CommentService) ListReplies(ctx context.Context, commentID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	replies, err := s.commentRepo.ListReplies(ctx, []uint{commentID})
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		r.Replies = []*models.Comment{}
	}
	if replies == nil {
		replies = []*models.Comment{}
	}
	return replies, nil
}

// DeleteComment removes a comment and its direct replies.
func (s *CommentService) DeleteComment(ctx context.Context, actor *policy.Actor, commentID uint) error {
	if actor == nil || actor.ID == 0 {
		return models.NewUnauthorizedError("Unauthorized")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Comment(comment.AuthorID), policy.ActionDelete).Err(); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

package service

import (
	"context"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionService_PostReactions(t *testing.T) {
	f := newFixture(t)
	svc := NewReactionService(f.reactions, f.posts, f.comments)
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	bob := f.createUser(t, "bob", models.RoleTeacher)
	post := f.createPost(t, alice, "Reactable", true)
	draft := f.createPost(t, alice, "Secret Draft", false)

	_, err := svc.ReactToPost(ctx, nil, post.Slug, "like")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = svc.ReactToPost(ctx, bob, post.Slug, "love")
	assertCode(t, err, models.CodeValidation)
	_, err = svc.ReactToPost(ctx, bob, draft.Slug, "like")
	assertCode(t, err, models.CodeNotFound)

	counts, err := svc.ReactToPost(ctx, bob, post.Slug, "like")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ReactionLike])

	counts, err = svc.ReactToPost(ctx, bob, post.Slug, "helpful")
	require.NoError(t, err)
	assert.Zero(t, counts[models.ReactionLike], "changing type replaces the reaction")
	assert.Equal(t, int64(1), counts[models.ReactionHelpful])

	counts, err = svc.ReactToPost(ctx, alice, post.Slug, "helpful")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.ReactionHelpful])

	counts, err = svc.RemovePostReaction(ctx, bob, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ReactionHelpful])
}

func TestReactionService_CommentReactions(t *testing.T) {
	f := newFixture(t)
	svc := NewReactionService(f.reactions, f.posts, f.comments)
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	post := f.createPost(t, alice, "Reactable", true)
	comment, err := f.commentService().CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = svc.ReactToComment(ctx, alice, comment.ID+50, "like")
	assertCode(t, err, models.CodeNotFound)

	counts, err := svc.ReactToComment(ctx, alice, comment.ID, "insightful")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ReactionInsightful])

	counts, err = svc.ReactToComment(ctx, alice, comment.ID, "insightful")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ReactionInsightful], "one reaction per user and comment")

	counts, err = svc.RemoveCommentReaction(ctx, alice, comment.ID)
	require.NoError(t, err)
	assert.Zero(t, counts[models.ReactionInsightful])
}

package service

import (
	"context"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Threading(t *testing.T) {
	f := newFixture(t)
	svc := f.commentService()
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	bob := f.createUser(t, "bob", models.RoleTeacher)
	post := f.createPost(t, alice, "Hello World", true)

	top, err := svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: post.ID, Content: "  Nice post  "})
	require.NoError(t, err)
	assert.Equal(t, "Nice post", top.Content)
	assert.Nil(t, top.ParentID)
	assert.NotNil(t, top.Replies)
	assert.Empty(t, top.Replies)
	require.NotNil(t, top.Author)
	assert.Equal(t, "bob", top.Author.Username)
	assert.Empty(t, top.Author.Email)

	reply, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &top.ID, Content: "Thanks"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "replies are not listed at the top level")
	assert.Equal(t, top.ID, list[0].ID)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, reply.ID, list[0].Replies[0].ID)
	assert.Equal(t, "alice", list[0].Replies[0].Author.Username)

	replies, err := svc.ListReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)

	entry := f.recorder.last()
	assert.Equal(t, models.ActivityCommentCreated, entry.Type)
	assert.Equal(t, "Commented on post", entry.Opts.Details)
	require.NotNil(t, entry.Opts.CommentID)
	assert.Equal(t, reply.ID, *entry.Opts.CommentID)
}

func TestCommentService_ListOrdersNewestFirstWithRepliesOldestFirst(t *testing.T) {
	f := newFixture(t)
	svc := f.commentService()
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	post := f.createPost(t, alice, "Ordering", true)

	first, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, Content: "first"})
	require.NoError(t, err)
	second, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, Content: "second"})
	require.NoError(t, err)
	r1, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &first.ID, Content: "r1"})
	require.NoError(t, err)
	r2, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &first.ID, Content: "r2"})
	require.NoError(t, err)

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.NotNil(t, list[0].Replies)
	assert.Empty(t, list[0].Replies)
	assert.Equal(t, first.ID, list[1].ID)
	require.Len(t, list[1].Replies, 2)
	assert.Equal(t, r1.ID, list[1].Replies[0].ID)
	assert.Equal(t, r2.ID, list[1].Replies[1].ID)

	empty, err := svc.ListComments(ctx, post.ID+100)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommentService_CreateCommentErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.commentService()
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	post := f.createPost(t, alice, "Hello World", true)
	other := f.createPost(t, alice, "Other Post", true)

	top, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, Content: "top"})
	require.NoError(t, err)
	reply, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &top.ID, Content: "reply"})
	require.NoError(t, err)
	missing := uint(9999)

	tests := []struct {
		name string
		in   CreateCommentInput
		code string
	}{
		{"anonymous", CreateCommentInput{PostID: post.ID, Content: "hi"}, models.CodeUnauthorized},
		{"blank content", CreateCommentInput{Actor: alice, PostID: post.ID, Content: "   "}, models.CodeValidation},
		{"missing post id", CreateCommentInput{Actor: alice, Content: "hi"}, models.CodeValidation},
		{"unknown post", CreateCommentInput{Actor: alice, PostID: missing, Content: "hi"}, models.CodeNotFound},
		{"unknown parent", CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &missing, Content: "hi"}, models.CodeNotFound},
		{"parent on another post", CreateCommentInput{Actor: alice, PostID: other.ID, ParentID: &top.ID, Content: "hi"}, models.CodeValidation},
		{"reply to a reply", CreateCommentInput{Actor: alice, PostID: post.ID, ParentID: &reply.ID, Content: "hi"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, tt.in)
			assertCode(t, err, tt.code)
		})
	}

	_, err = svc.ListComments(ctx, 0)
	assertCode(t, err, models.CodeValidation)
	_, err = svc.ListReplies(ctx, missing)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_DeleteComment(t *testing.T) {
	f := newFixture(t)
	svc := f.commentService()
	ctx := context.Background()
	alice := f.createUser(t, "alice", models.RoleTeacher)
	bob := f.createUser(t, "bob", models.RoleTeacher)
	mod := f.createUser(t, "moddy", models.RoleModerator)
	post := f.createPost(t, alice, "Hello World", true)

	top, err := svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: post.ID, Content: "top"})
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: post.ID, ParentID: &top.ID, Content: "reply"})
	require.NoError(t, err)

	assertCode(t, svc.DeleteComment(ctx, nil, top.ID), models.CodeUnauthorized)
	assertCode(t, svc.DeleteComment(ctx, bob, top.ID), models.CodeForbidden)
	require.NoError(t, svc.DeleteComment(ctx, mod, top.ID))

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining, "replies are deleted with their parent")
}

package repository

import (
	"context"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_TopLevelAndReplies(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", models.RoleTeacher)
	bob := createUser(t, db, "bob", models.RoleTeacher)
	post := createPost(t, db, alice, "Hello", true)

	first := &models.Comment{Content: "First", AuthorID: bob.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Comment{Content: "Nice post", AuthorID: bob.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, second))
	r1 := &models.Comment{Content: "Thanks", AuthorID: alice.ID, PostID: post.ID, ParentID: &second.ID}
	require.NoError(t, repo.Create(ctx, r1))
	r2 := &models.Comment{Content: "Welcome", AuthorID: bob.ID, PostID: post.ID, ParentID: &second.ID}
	require.NoError(t, repo.Create(ctx, r2))

	top, err := repo.ListTopLevel(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, second.ID, top[0].ID, "newest top-level comment first")
	assert.Equal(t, first.ID, top[1].ID)
	require.NotNil(t, top[0].Author)
	assert.Equal(t, "bob", top[0].Author.Username)

	replies, err := repo.ListReplies(ctx, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID, "replies oldest first")
	assert.Equal(t, r2.ID, replies[1].ID)
	assert.Equal(t, "alice", replies[0].Author.Username)

	none, err := repo.ListReplies(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommentRepository_DeleteRemovesReplies(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", models.RoleTeacher)
	post := createPost(t, db, alice, "Hello", true)

	parent := &models.Comment{Content: "Parent", AuthorID: alice.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, parent))
	reply := &models.Comment{Content: "Reply", AuthorID: alice.ID, PostID: post.ID, ParentID: &parent.ID}
	require.NoError(t, repo.Create(ctx, reply))
	sibling := &models.Comment{Content: "Sibling", AuthorID: alice.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, sibling))
	require.NoError(t, NewReactionRepository(db).SetForComment(ctx, alice.ID, reply.ID, models.ReactionLike))

	require.NoError(t, repo.Delete(ctx, parent.ID))

	_, err := repo.GetByID(ctx, reply.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = repo.Delete(ctx, parent.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

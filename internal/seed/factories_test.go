package seed

import (
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFactory_BuildUser(t *testing.T) {
	f := NewFactory(nil, Options{SkipBcrypt: true, RandSeed: 11})

	a := f.BuildUser()
	b := f.BuildUser(func(u *models.User) { u.Role = models.RoleModerator })

	assert.NotEqual(t, a.Username, b.Username)
	assert.NotEqual(t, a.Email, b.Email)
	assert.Equal(t, models.RoleTeacher, a.Role)
	assert.Equal(t, models.RoleModerator, b.Role)
	assert.Equal(t, DefaultPassword, a.Password)
	assert.Contains(t, subjects, a.Subject)
	assert.Equal(t, models.NormalizeIdentity(a.Username), a.Username)
}

func TestFactory_HashesPasswordOnce(t *testing.T) {
	f := NewFactory(nil, Options{RandSeed: 5})
	a := f.BuildUser()
	b := f.BuildUser()

	assert.Equal(t, a.Password, b.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(DefaultPassword)))
}

func TestFactory_BuildPostUniqueSlugs(t *testing.T) {
	f := NewFactory(nil, Options{SkipBcrypt: true, RandSeed: 9})
	author := f.BuildUser()
	author.ID = 1

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		p := f.BuildPost(author)
		assert.False(t, seen[p.Slug], p.Slug)
		seen[p.Slug] = true
		assert.Equal(t, uint(1), p.AuthorID)
	}
}

func TestFactory_DryRunAssignsIDs(t *testing.T) {
	f := NewFactory(nil, Options{SkipBcrypt: true, DryRun: true, RandSeed: 2})

	user, err := f.CreateUser()
	require.NoError(t, err)
	post, err := f.CreatePost(user, nil)
	require.NoError(t, err)
	comment, err := f.CreateComment(user, post, nil)
	require.NoError(t, err)
	reply, err := f.CreateComment(user, post, comment)
	require.NoError(t, err)
	reaction, err := f.CreateReaction(user, nil, &comment.ID)
	require.NoError(t, err)

	ids := map[uint]bool{user.ID: true, post.ID: true, comment.ID: true, reply.ID: true, reaction.ID: true}
	assert.Len(t, ids, 5)
	assert.Nil(t, comment.ParentID)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, comment.ID, *reply.ParentID)
	assert.False(t, reply.CreatedAt.Before(comment.CreatedAt))
	assert.True(t, reaction.Type.Valid())
}

func TestFactory_PickUsersDistinct(t *testing.T) {
	f := NewFactory(nil, Options{SkipBcrypt: true, RandSeed: 4})
	users := make([]*models.User, 8)
	for i := range users {
		users[i] = f.BuildUser()
		users[i].ID = uint(i + 1)
	}

	for i := 0; i < 20; i++ {
		picked := f.pickUsers(users, 5)
		assert.LessOrEqual(t, len(picked), 5)
		seen := map[uint]bool{}
		for _, u := range picked {
			assert.False(t, seen[u.ID])
			seen[u.ID] = true
		}
	}
	assert.Empty(t, f.pickTags(nil, 3))
}

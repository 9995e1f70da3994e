package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/activity"
	"github.com/spw3bt3ch/Teachers-blog/internal/database"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

type loggedActivity struct {
	UserID uint
	Type   models.ActivityType
	Opts   activity.Options
}

// recorderStub captures activity calls in memory.
type recorderStub struct {
	mu      sync.Mutex
	entries []loggedActivity
}

func (r *recorderStub) Log(_ context.Context, userID uint, t models.ActivityType, opts activity.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, loggedActivity{UserID: userID, Type: t, Opts: opts})
}

func (r *recorderStub) types() []models.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ActivityType, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Type
	}
	return out
}

func (r *recorderStub) last() loggedActivity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
	recorder  *recorderStub
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		posts:     repository.NewPostRepository(db),
		comments:  repository.NewCommentRepository(db),
		reactions: repository.NewReactionRepository(db),
		recorder:  &recorderStub{},
	}
}

func (f *fixture) postService() *PostService {
	return NewPostService(f.posts, repository.NewCategoryRepository(f.db), repository.NewTagRepository(f.db), f.reactions, f.recorder)
}

func (f *fixture) commentService() *CommentService {
	return NewCommentService(f.comments, f.posts, f.recorder)
}

func (f *fixture) createUser(t *testing.T, username string, role models.Role) *policy.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:    username + "@school.test",
		Username: username,
		Name:     username,
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return &policy.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) createPost(t *testing.T, author *policy.Actor, title string, published bool) *models.Post {
	t.Helper()
	post, err := f.postService().CreatePost(context.Background(), CreatePostInput{
		Actor:     author,
		Title:     title,
		Content:   "Body of " + title,
		Published: published,
	})
	require.NoError(t, err)
	return post
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func ptr[T any](v T) *T { return &v }

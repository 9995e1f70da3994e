package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/notifications"
	"github.com/spw3bt3ch/Teachers-blog/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	records []*models.Activity
	err     error
	block   chan struct{}
}

func (s *memoryStore) Create(_ context.Context, a *models.Activity) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	a.ID = uint(len(s.records) + 1)
	s.records = append(s.records, a)
	return nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestLogger_PersistsRecords(t *testing.T) {
	store := &memoryStore{}
	l := NewLogger(store, 8)

	postID := uint(7)
	l.Log(context.Background(), 3, models.ActivityPostCreated, Options{
		PostID:   &postID,
		Details:  "Created post: Hello World",
		Metadata: map[string]any{"title": "Hello World"},
	})

	require.NoError(t, l.Close(context.Background()))
	require.Equal(t, 1, store.len())

	got := store.records[0]
	assert.Equal(t, models.ActivityPostCreated, got.Type)
	assert.Equal(t, uint(3), got.UserID)
	assert.Equal(t, postID, *got.PostID)
	assert.Equal(t, "Hello World", got.Metadata["title"])
}

func TestLogger_DropsInvalidRecords(t *testing.T) {
	store := &memoryStore{}
	l := NewLogger(store, 8)

	l.Log(context.Background(), 0, models.ActivityUserLogin, Options{})
	l.Log(context.Background(), 1, models.ActivityType("bogus"), Options{})

	require.NoError(t, l.Close(context.Background()))
	assert.Zero(t, store.len())
}

func TestLogger_StoreFailureDoesNotPropagate(t *testing.T) {
	store := &memoryStore{err: errors.New("database is down")}
	l := NewLogger(store, 8)

	assert.NotPanics(t, func() {
		l.Log(context.Background(), 1, models.ActivityUserLogin, Options{})
	})
	require.NoError(t, l.Close(context.Background()))
	assert.Zero(t, store.len())
}

func TestLogger_FullQueueDoesNotBlock(t *testing.T) {
	var logs bytes.Buffer
	prev := observability.GlobalLogger
	observability.SetLogger(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { observability.GlobalLogger = prev })

	store := &memoryStore{block: make(chan struct{})}
	l := NewLogger(store, 1)

	finished := make(chan struct{})
	go func() {
		for range 50 {
			l.Log(context.Background(), 1, models.ActivityUserLogin, Options{})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full queue")
	}
	assert.Contains(t, logs.String(), "activity queue full, dropping record")

	close(store.block)
	require.NoError(t, l.Close(context.Background()))
	// one record held by the worker plus at most one buffered
	assert.LessOrEqual(t, store.len(), 2)
	assert.GreaterOrEqual(t, store.len(), 1)
}

func TestLogger_CancelledRequestContextStillPersists(t *testing.T) {
	store := &memoryStore{}
	l := NewLogger(store, 4)

	ctx, cancel := context.WithCancel(context.Background())
	l.Log(ctx, 2, models.ActivityCommentCreated, Options{})
	cancel()

	require.NoError(t, l.Close(context.Background()))
	assert.Equal(t, 1, store.len())
}

func TestLogger_LogAfterCloseIsDropped(t *testing.T) {
	store := &memoryStore{}
	l := NewLogger(store, 4)
	require.NoError(t, l.Close(context.Background()))
	require.NoError(t, l.Close(context.Background()))

	l.Log(context.Background(), 1, models.ActivityUserLogin, Options{})
	assert.Zero(t, store.len())
}

func TestLogger_CloseHonoursContext(t *testing.T) {
	store := &memoryStore{block: make(chan struct{})}
	l := NewLogger(store, 4)
	l.Log(context.Background(), 1, models.ActivityUserLogin, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Close(ctx), context.DeadlineExceeded)

	close(store.block)
}

func TestLogger_PublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	notifier := notifications.NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartActivitySubscriber(ctx, func(_ string, payload string) {
		received <- payload
	}))

	store := &memoryStore{}
	l := NewLogger(store, 4, notifier)
	l.Log(context.Background(), 5, models.ActivityUserRegistered, Options{Details: "New user registered: alice"})
	require.NoError(t, l.Close(context.Background()))

	select {
	case payload := <-received:
		var a models.Activity
		require.NoError(t, json.Unmarshal([]byte(payload), &a))
		assert.Equal(t, models.ActivityUserRegistered, a.Type)
		assert.Equal(t, uint(1), a.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("activity was not published")
	}
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishActivity(ctx context.Context, a *models.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func TestLogger_PublisherFailureIsIsolated(t *testing.T) {
	failing := new(MockPublisher)
	failing.On("PublishActivity", mock.Anything, mock.AnythingOfType("*models.Activity")).
		Return(errors.New("broker unavailable"))
	healthy := new(MockPublisher)
	healthy.On("PublishActivity", mock.Anything, mock.MatchedBy(func(a *models.Activity) bool {
		return a.Type == models.ActivityPostDeleted && a.ID == 1
	})).Return(nil)

	store := &memoryStore{}
	l := NewLogger(store, 4, failing, healthy)
	l.Log(context.Background(), 9, models.ActivityPostDeleted, Options{Details: "Deleted post: Old News"})
	require.NoError(t, l.Close(context.Background()))

	assert.Equal(t, 1, store.len())
	failing.AssertNumberOfCalls(t, "PublishActivity", 1)
	healthy.AssertExpectations(t)
}

func TestLogger_NothingPublishedWhenStoreFails(t *testing.T) {
	pub := new(MockPublisher)
	store := &memoryStore{err: errors.New("constraint violation")}
	l := NewLogger(store, 4, pub)
	l.Log(context.Background(), 1, models.ActivityUserUpdated, Options{})
	require.NoError(t, l.Close(context.Background()))

	pub.AssertNotCalled(t, "PublishActivity", mock.Anything, mock.Anything)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() { r.Log(context.Background(), 1, models.ActivityUserLogin, Options{}) })
}

// Package activity records audit events without ever blocking or failing the
// request that produced them.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/observability"

	"gorm.io/datatypes"
)

const (
	// DefaultQueueSize is used when NewLogger receives a non-positive size.
	DefaultQueueSize = 1024
	persistTimeout   = 5 * time.Second
	publishTimeout   = 2 * time.Second
)

// Options carries the optional parts of an activity record.
type Options struct {
	PostID    *uint
	CommentID *uint
	Details   string
	Metadata  map[string]any
}

// Store persists activity records.
type Store interface {
	Create(ctx context.Context, activity *models.Activity) error
}

// Publisher receives every activity after it has been persisted.
type Publisher interface {
	PublishActivity(ctx context.Context, activity *models.Activity) error
}

// Recorder is what services depend on.
type Recorder interface {
	Log(ctx context.Context, userID uint, t models.ActivityType, opts Options)
}

type entry struct {
	ctx      context.Context
	activity *models.Activity
}

// Logger queues activity records and persists them on a single worker goroutine.
// Log never blocks: when the queue is full the record is dropped.
type Logger struct {
	store      Store
	publishers []Publisher
	queue      chan entry

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewLogger starts the worker. Call Close to drain it.
func NewLogger(store Store, size int, publishers ...Publisher) *Logger {
	if size <= 0 {
		size = DefaultQueueSize
	}
	l := &Logger{
		store:      store,
		publishers: publishers,
		queue:      make(chan entry, size),
		done:       make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues a record. Invalid records and records arriving after Close are dropped.
func (l *Logger) Log(ctx context.Context, userID uint, t models.ActivityType, opts Options) {
	if userID == 0 || !t.Valid() {
		observability.ActivityEvents.WithLabelValues("invalid").Inc()
		return
	}

	a := &models.Activity{
		Type:      t,
		UserID:    userID,
		PostID:    opts.PostID,
		CommentID: opts.CommentID,
		Details:   opts.Details,
	}
	if len(opts.Metadata) > 0 {
		a.Metadata = datatypes.JSONMap(opts.Metadata)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		observability.ActivityEvents.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case l.queue <- entry{ctx: context.WithoutCancel(ctx), activity: a}:
		observability.ActivityEvents.WithLabelValues("enqueued").Inc()
		observability.ActivityQueueDepth.Inc()
	default:
		observability.ActivityEvents.WithLabelValues("dropped").Inc()
		observability.GlobalLogger.WarnContext(ctx, "activity queue full, dropping record",
			slog.String("type", string(t)),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("correlation_id", observability.ExtractCorrelationID(ctx)),
		)
	}
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		observability.ActivityQueueDepth.Dec()
		l.persist(e)
	}
}

func (l *Logger) persist(e entry) {
	ctx, cancel := context.WithTimeout(e.ctx, persistTimeout)
	defer cancel()

	if err := l.store.Create(ctx, e.activity); err != nil {
		observability.ActivityEvents.WithLabelValues("failed").Inc()
		observability.LogAsyncOperationError(ctx, "activity.persist", err, map[string]any{
			"type":    string(e.activity.Type),
			"user_id": e.activity.UserID,
		})
		return
	}
	observability.ActivityEvents.WithLabelValues("persisted").Inc()

	for _, p := range l.publishers {
		pctx, pcancel := context.WithTimeout(e.ctx, publishTimeout)
		if err := p.PublishActivity(pctx, e.activity); err != nil {
			observability.LogAsyncOperationError(pctx, "activity.publish", err, map[string]any{
				"type":        string(e.activity.Type),
				"activity_id": e.activity.ID,
			})
		}
		pcancel()
	}
}

// Close stops accepting records and waits for queued ones to be written or ctx to end.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop discards every record.
type Nop struct{}

// Log implements Recorder.
func (Nop) Log(context.Context, uint, models.ActivityType, Options) {}

// Package notifications fans activity events out to Redis pub/sub and NATS subscribers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/redis/go-redis/v9"
)

// ActivityChannel is the Redis channel every persisted activity is published on.
const ActivityChannel = "activity"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishActivity sends the JSON encoded activity to ActivityChannel and to the
// acting user's channel. A nil client is a no-op.
func (n *Notifier) PublishActivity(ctx context.Context, a *models.Activity) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	if err := n.rdb.Publish(ctx, ActivityChannel, payload).Err(); err != nil {
		return err
	}
	return n.rdb.Publish(ctx, UserChannel(a.UserID), payload).Err()
}

// StartActivitySubscriber subscribes to ActivityChannel and calls onMessage for each
// payload until ctx is cancelled.
func (n *Notifier) StartActivitySubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ActivityChannel)
	// wait for the subscription to be confirmed so no early publish is lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in activity subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "activity:user:" + strconv.FormatUint(uint64(userID), 10)
}

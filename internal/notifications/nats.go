package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/nats-io/nats.go"
)

// ActivitySubjectPrefix prefixes the NATS subject; the activity type is appended.
const ActivitySubjectPrefix = "activity."

// NATSPublisher publishes activities on activity.<type>.
type NATSPublisher struct {
	conn *nats.Conn
}

// ConnectNATS dials url. An empty url returns a publisher that does nothing.
func ConnectNATS(url string) (*NATSPublisher, error) {
	if url == "" {
		return &NATSPublisher{}, nil
	}
	conn, err := nats.Connect(url,
		nats.Name("teachers-blog-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				middleware.Logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			middleware.Logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	middleware.Logger.Info("NATS connected successfully", slog.String("url", conn.ConnectedUrl()))
	return &NATSPublisher{conn: conn}, nil
}

// ActivitySubject returns the subject an activity type is published on.
func ActivitySubject(t models.ActivityType) string {
	return ActivitySubjectPrefix + string(t)
}

// PublishActivity sends the JSON encoded activity. The context is unused: nats
// Publish is buffered and never blocks on the network.
func (p *NATSPublisher) PublishActivity(_ context.Context, a *models.Activity) error {
	if p == nil || p.conn == nil {
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	return p.conn.Publish(ActivitySubject(a.Type), payload)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

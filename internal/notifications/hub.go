package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 4
	maxTotalConns   = 200
)

var (
	ErrHubClosed       = errors.New("live feed is shutting down")
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrServerConnLimit = errors.New("server connection limit reached")
)

// FeedMessage is the frame written to live feed clients.
type FeedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ActivityHub fans every published activity out to connected admin dashboards.
type ActivityHub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

func NewActivityHub() *ActivityHub {
	return &ActivityHub{conns: make(map[uint]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *ActivityHub) Name() string { return "activity feed" }

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *ActivityHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.LiveFeedConnections.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send queue. Safe to call twice.
func (h *ActivityHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.totalConns--
	observability.LiveFeedConnections.Dec()
	close(client.Send)
}

// Count returns the number of registered clients.
func (h *ActivityHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Broadcast wraps an activity payload in a FeedMessage and queues it for every client.
func (h *ActivityHub) Broadcast(payload string) {
	if !json.Valid([]byte(payload)) {
		middleware.Logger.Warn("dropping malformed activity payload", slog.Int("bytes", len(payload)))
		return
	}
	frame, err := json.Marshal(FeedMessage{Type: "activity", Payload: json.RawMessage(payload)})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(frame)
		}
	}
}

// StartWiring subscribes the hub to the notifier's activity channel until ctx ends.
func (h *ActivityHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartActivitySubscriber(ctx, func(_ string, payload string) {
		h.Broadcast(payload)
	})
}

// Shutdown closes every client queue; the write pumps then send a close frame.
func (h *ActivityHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for _, clients := range h.conns {
		for c := range clients {
			close(c.Send)
			observability.LiveFeedConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}

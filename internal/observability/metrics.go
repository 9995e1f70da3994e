package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teachers_blog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ActivityEvents counts activity records by outcome
	// (enqueued, dropped, persisted, failed, invalid).
	ActivityEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teachers_blog_activity_events_total",
		Help: "Activity log records by outcome",
	}, []string{"outcome"})

	// ActivityQueueDepth is the number of records waiting for the activity worker.
	ActivityQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teachers_blog_activity_queue_depth",
		Help: "Activity records waiting to be persisted",
	})

	// LiveFeedConnections is the number of open admin activity feed sockets.
	LiveFeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teachers_blog_live_feed_connections",
		Help: "Open admin activity feed websocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teachers_blog_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// PostViews counts successful post reads.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teachers_blog_post_views_total",
		Help: "Total number of post views served",
	})
)

// DatabaseMetrics records query latency for repository calls.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

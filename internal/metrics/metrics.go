// Package metrics provides Prometheus metrics for chat-explorer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the explorer.
type Metrics struct {
	// Load pipeline
	LoadsTotal          *prometheus.CounterVec // status: ok|error|superseded
	ConversationsLoaded prometheus.Gauge
	MessagesLoaded      prometheus.Gauge
	MessagesDropped     prometheus.Counter

	// Search
	SearchQueriesTotal prometheus.Counter
	SearchDuration     prometheus.Histogram

	// HTTP
	HTTPRequestsTotal *prometheus.CounterVec // path, status
}

// New creates and registers all collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.LoadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_explorer_loads_total",
			Help: "Total number of collection load attempts",
		},
		[]string{"status"},
	)

	m.ConversationsLoaded = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_explorer_conversations_loaded",
			Help: "Number of conversations in the current collection",
		},
	)

	m.MessagesLoaded = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_explorer_messages_loaded",
			Help: "Number of messages in the current collection",
		},
	)

	m.MessagesDropped = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_explorer_messages_dropped_total",
			Help: "Total number of malformed messages skipped during loads",
		},
	)

	m.SearchQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_explorer_search_queries_total",
			Help: "Total number of search queries executed",
		},
	)

	m.SearchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_explorer_search_duration_seconds",
			Help:    "Duration of search queries in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_explorer_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"path", "status"},
	)

	return m
}

// RecordLoad updates the load gauges and counters after a load attempt.
func (m *Metrics) RecordLoad(status string, conversations, messages, dropped int) {
	m.LoadsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		m.ConversationsLoaded.Set(float64(conversations))
		m.MessagesLoaded.Set(float64(messages))
		m.MessagesDropped.Add(float64(dropped))
	}
}

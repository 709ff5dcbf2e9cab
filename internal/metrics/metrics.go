// Package metrics exposes the bridge's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the collection of all bridge metrics.
type Metrics struct {
	MessagesReceived prometheus.Counter
	CommandsTotal    *prometheus.CounterVec
	FetchesTotal     *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	ChunksSent       prometheus.Counter
	SendFailures     prometheus.Counter
	ActiveSessions   prometheus.Gauge
	SessionsEvicted  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a private registry,
// so multiple instances (tests included) never collide.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meshgopher_messages_received_total",
		Help: "Total number of inbound direct messages",
	})
	m.CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meshgopher_commands_total",
		Help: "Total number of handled commands",
	}, []string{"verb", "outcome"})
	m.FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meshgopher_gopher_fetches_total",
		Help: "Total number of successful gopher fetches",
	}, []string{"kind"})
	m.FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "meshgopher_gopher_fetch_duration_seconds",
		Help:    "Duration of gopher fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})
	m.ChunksSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meshgopher_chunks_sent_total",
		Help: "Total number of reply chunks sent",
	})
	m.SendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meshgopher_send_failures_total",
		Help: "Total number of chunks the transport rejected",
	})
	m.ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "meshgopher_active_sessions",
		Help: "Number of live navigation sessions",
	})
	m.SessionsEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meshgopher_sessions_evicted_total",
		Help: "Total number of sessions dropped by idle eviction",
	})

	m.registry.MustRegister(
		m.MessagesReceived,
		m.CommandsTotal,
		m.FetchesTotal,
		m.FetchDuration,
		m.ChunksSent,
		m.SendFailures,
		m.ActiveSessions,
		m.SessionsEvicted,
	)
	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

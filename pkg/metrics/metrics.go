// Package metrics provides Prometheus metrics for the workforce service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Event pipeline
	eventsPublished *prometheus.CounterVec
	handlerErrors   *prometheus.CounterVec

	// Scoring
	scoresRecomputed prometheus.Counter
	recomputeLatency prometheus.Histogram
	recomputeErrors  prometheus.Counter

	// Smart assign
	assignRequests prometheus.Counter

	// Broadcast gateway
	wsConnections  prometheus.Gauge
	wsRooms        prometheus.Gauge
	wsBroadcasts   prometheus.Counter
	wsSendSkipped  prometheus.Counter
	wsAuthFailures *prometheus.CounterVec

	// Store
	storeOpLatency *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go collector noise.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "workforce",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.eventsPublished = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_published_total",
			Help:      "Total number of events published on the bus, by event name",
		},
		[]string{"event"},
	)

	m.handlerErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "handler_errors_total",
			Help:      "Total number of swallowed event handler errors, by handler",
		},
		[]string{"handler"},
	)

	m.scoresRecomputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_recomputed_total",
		Help:      "Total number of productivity score recomputations",
	})

	m.recomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_recompute_latency_milliseconds",
		Help:      "Histogram of score recomputation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recomputeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_recompute_errors_total",
		Help:      "Total number of failed score recomputations",
	})

	m.assignRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "smart_assign_requests_total",
		Help:      "Total number of smart-assign recommendation requests",
	})

	m.wsConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_connections",
		Help:      "Current number of open dashboard WebSocket connections",
	})

	m.wsRooms = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_rooms",
		Help:      "Current number of organization rooms with at least one connection",
	})

	m.wsBroadcasts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_broadcasts_total",
		Help:      "Total number of messages broadcast to dashboard clients",
	})

	m.wsSendSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_sends_skipped_total",
		Help:      "Total number of sends skipped due to closed or erroring connections",
	})

	m.wsAuthFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ws_auth_failures_total",
			Help:      "Total number of rejected WebSocket handshakes, by close code",
		},
		[]string{"code"},
	)

	m.storeOpLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_operation_latency_milliseconds",
			Help:      "Histogram of store operation latency in milliseconds, by operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)
}

// Facade functions on the global manager.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func RecordEventPublished(event string) {
	globalManager.eventsPublished.WithLabelValues(event).Inc()
}

func RecordHandlerError(handler string) {
	globalManager.handlerErrors.WithLabelValues(handler).Inc()
}

func RecordScoreRecomputed() {
	globalManager.scoresRecomputed.Inc()
}

func RecordRecomputeLatency(latencyMs float64) {
	globalManager.recomputeLatency.Observe(latencyMs)
}

func RecordRecomputeError() {
	globalManager.recomputeErrors.Inc()
}

func RecordAssignRequest() {
	globalManager.assignRequests.Inc()
}

func UpdateWSConnections(count int) {
	globalManager.wsConnections.Set(float64(count))
}

func UpdateWSRooms(count int) {
	globalManager.wsRooms.Set(float64(count))
}

func RecordWSBroadcast() {
	globalManager.wsBroadcasts.Inc()
}

func RecordWSSendSkipped() {
	globalManager.wsSendSkipped.Inc()
}

func RecordWSAuthFailure(code string) {
	globalManager.wsAuthFailures.WithLabelValues(code).Inc()
}

func RecordStoreOpLatency(operation string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(operation).Observe(latencyMs)
}

// GetRegistry returns the custom registry used for the /metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

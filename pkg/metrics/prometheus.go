// Package metrics provides Prometheus metrics for the riskview aggregation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
)

// Aggregation mode labels.
const (
	ModeLive     = "live"
	ModeSalvage  = "salvage"
	ModeDegraded = "degraded"
)

// Manager manages all Prometheus metrics for the riskview service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Provider metrics
	providerFetches *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	providerSkipped *prometheus.CounterVec

	// Aggregation metrics
	aggregationCycles  *prometheus.CounterVec
	aggregationLatency prometheus.Histogram
	subjectsTotal      prometheus.Gauge
	snapshotSeq        prometheus.Gauge
	snapshotStaleDrops prometheus.Counter
	snapshotLastUnix   prometheus.Gauge

	// Resolver metrics
	resolveAttempts *prometheus.CounterVec
	resolveResults  *prometheus.CounterVec

	// Refresh pipeline metrics
	refreshQueueSize     prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshEnqueued      prometheus.Counter
	refreshRejected      *prometheus.CounterVec
	refreshWorkers       prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riskview",
		subsystem:        "aggregator",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		}, labels)
	}
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	histogramVec := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels, Buckets: buckets,
		}, labels)
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels, Buckets: buckets,
		})
	}

	m.providerFetches = counterVec("provider_fetches_total", "Provider calls by outcome", "provider", "outcome")
	m.providerLatency = histogramVec("provider_latency_milliseconds", "Provider call latency in milliseconds", m.histogramBuckets, "provider")
	m.providerSkipped = counterVec("provider_skipped_entries_total", "Malformed entries skipped inside valid provider payloads", "provider")

	m.aggregationCycles = counterVec("cycles_total", "Aggregation cycles by result mode", "mode")
	m.aggregationLatency = histogram("cycle_latency_milliseconds", "End-to-end aggregation cycle latency in milliseconds", m.histogramBuckets)
	m.subjectsTotal = gauge("subjects", "Subjects in the latest published snapshot")
	m.snapshotSeq = gauge("snapshot_seq", "Trigger sequence of the latest published snapshot")
	m.snapshotStaleDrops = counter("snapshot_stale_drops_total", "Completed cycles dropped because a fresher snapshot was already published")
	m.snapshotLastUnix = gauge("snapshot_last_unix_seconds", "Completion time of the latest published snapshot")

	m.resolveAttempts = counterVec("resolve_attempts_total", "Detail endpoint attempts by outcome", "outcome")
	m.resolveResults = counterVec("resolve_results_total", "Detail lookups by final result", "result")

	m.refreshQueueSize = gauge("refresh_queue_size", "Pending refresh requests")
	m.refreshQueueCapacity = gauge("refresh_queue_capacity", "Refresh queue capacity")
	m.refreshEnqueued = counter("refresh_enqueued_total", "Refresh requests accepted")
	m.refreshRejected = counterVec("refresh_rejected_total", "Refresh requests rejected", "reason")
	m.refreshWorkers = gauge("refresh_workers", "Running refresh workers")

	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of operations that ended in an error", m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Provider Metrics Functions.

// RecordProviderFetch counts one provider call with its outcome label.
func RecordProviderFetch(provider, outcome string) {
	globalManager.providerFetches.WithLabelValues(provider, outcome).Inc()
}

// RecordProviderLatency records provider call latency in milliseconds.
func RecordProviderLatency(provider string, latencyMs float64) {
	globalManager.providerLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordProviderSkipped adds n skipped malformed entries for provider.
func RecordProviderSkipped(provider string, n int) {
	if n > 0 {
		globalManager.providerSkipped.WithLabelValues(provider).Add(float64(n))
	}
}

// Aggregation Metrics Functions.

// RecordAggregationCycle counts a completed cycle by mode (live, salvage, degraded).
func RecordAggregationCycle(mode string) {
	globalManager.aggregationCycles.WithLabelValues(mode).Inc()
}

// RecordAggregationLatency records cycle latency in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// UpdateSnapshot records the shape of a newly published snapshot.
func UpdateSnapshot(subjects int, seq uint64, completedAt time.Time) {
	globalManager.subjectsTotal.Set(float64(subjects))
	globalManager.snapshotSeq.Set(float64(seq))
	globalManager.snapshotLastUnix.Set(float64(completedAt.Unix()))
}

// RecordStaleSnapshotDrop counts a cycle that finished after a fresher one.
func RecordStaleSnapshotDrop() {
	globalManager.snapshotStaleDrops.Inc()
}

// Resolver Metrics Functions.

// RecordResolveAttempt counts one detail endpoint attempt.
func RecordResolveAttempt(outcome string) {
	globalManager.resolveAttempts.WithLabelValues(outcome).Inc()
}

// RecordResolveResult counts one full detail lookup ("found" or "exhausted").
func RecordResolveResult(result string) {
	globalManager.resolveResults.WithLabelValues(result).Inc()
}

// Refresh Pipeline Metrics Functions.

// UpdateRefreshQueue sets the refresh queue size and capacity.
func UpdateRefreshQueue(size, capacity int) {
	globalManager.refreshQueueSize.Set(float64(size))
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// RecordRefreshEnqueued counts an accepted refresh request.
func RecordRefreshEnqueued() {
	globalManager.refreshEnqueued.Inc()
}

// RecordRefreshRejected counts a rejected refresh request by reason.
func RecordRefreshRejected(reason string) {
	globalManager.refreshRejected.WithLabelValues(reason).Inc()
}

// UpdateRefreshWorkers sets the number of running refresh workers.
func UpdateRefreshWorkers(count int) {
	globalManager.refreshWorkers.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the error counter by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the error counter for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

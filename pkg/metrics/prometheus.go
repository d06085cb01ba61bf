// Package metrics provides Prometheus metrics for the applytrack service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	enabled         atomic.Bool
	refreshInterval atomic.Int64

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// Storage
	storeQueryLatency *prometheus.HistogramVec
	storeQueryRows    *prometheus.CounterVec

	// Aggregation core
	aggregationLatency  *prometheus.HistogramVec
	aggregationRecords  *prometheus.CounterVec
	aggregationIgnored  *prometheus.CounterVec
	staleLoadsDiscarded *prometheus.CounterVec

	// Tracker state
	openTasks     prometheus.Gauge
	applications  prometheus.Gauge
	trackedSchool prometheus.Gauge
	overdueTasks  prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "applytrack",
		subsystem:        "tracker",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often gauges should be refreshed.
func RefreshInterval() time.Duration {
	return time.Duration(globalManager.refreshInterval.Load())
}

// Enabled reports whether the global manager records.
func Enabled() bool {
	return globalManager.enabled.Load()
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() {
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds",
		"Store operation latency in milliseconds", "operation")
	m.storeQueryRows = m.counterVec("store_query_rows_total",
		"Rows returned by store read operations", "operation")

	m.aggregationLatency = m.histogramVec("aggregation_latency_milliseconds",
		"Time spent in a dashboard aggregator", "aggregator")
	m.aggregationRecords = m.counterVec("aggregation_records_total",
		"Records counted into a bucket by an aggregator", "aggregator")
	m.aggregationIgnored = m.counterVec("aggregation_ignored_total",
		"Records ignored because they fell outside the aggregation window", "aggregator")
	m.staleLoadsDiscarded = m.counterVec("stale_loads_discarded_total",
		"Snapshot loads discarded because a newer load superseded them", "scope")

	m.openTasks = m.gauge("open_tasks", "Open tasks seen by the last overview")
	m.applications = m.gauge("applications", "Applications seen by the last overview")
	m.trackedSchool = m.gauge("tracked_schools", "Schools on the list seen by the last overview")
	m.overdueTasks = m.gauge("overdue_tasks", "Overdue open tasks seen by the last overview")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent increments the error counter of a component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint increments the error counter of an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// ObserveStoreQuery records the latency and row count of a store operation.
func ObserveStoreQuery(operation string, started time.Time, rows int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(sinceMs(started))
	if rows > 0 {
		globalManager.storeQueryRows.WithLabelValues(operation).Add(float64(rows))
	}
}

// ObserveAggregation records one aggregator run.
func ObserveAggregation(aggregator string, started time.Time, counted, ignored int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.aggregationLatency.WithLabelValues(aggregator).Observe(sinceMs(started))
	if counted > 0 {
		globalManager.aggregationRecords.WithLabelValues(aggregator).Add(float64(counted))
	}
	if ignored > 0 {
		globalManager.aggregationIgnored.WithLabelValues(aggregator).Add(float64(ignored))
	}
}

// RecordStaleLoad counts a snapshot load dropped because it was superseded.
func RecordStaleLoad(scope string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.staleLoadsDiscarded.WithLabelValues(scope).Inc()
}

// UpdateTrackerTotals publishes the counts of the latest overview.
func UpdateTrackerTotals(schools, applications, openTasks, overdue int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.trackedSchool.Set(float64(schools))
	globalManager.applications.Set(float64(applications))
	globalManager.openTasks.Set(float64(openTasks))
	globalManager.overdueTasks.Set(float64(overdue))
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

func sinceMs(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000
}

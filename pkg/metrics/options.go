package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Registration options take effect only in
// NewManager; WithMetricsEnabled and WithRefreshInterval may also be passed
// to Configure at runtime.
type Option func(*Manager)

// WithMetricsEnabled turns recording on or off.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled.Store(enabled)
	}
}

// WithRefreshInterval sets how often the process gauges are refreshed.
// Non-positive values keep the current interval.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval.Store(int64(interval))
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of
// the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Configure applies runtime options to the global manager. It is safe to
// call while metrics are being recorded.
func Configure(opts ...Option) {
	scratch := &Manager{}
	scratch.enabled.Store(globalManager.enabled.Load())
	scratch.refreshInterval.Store(globalManager.refreshInterval.Load())
	for _, opt := range opts {
		opt(scratch)
	}
	globalManager.enabled.Store(scratch.enabled.Load())
	globalManager.refreshInterval.Store(scratch.refreshInterval.Load())
}

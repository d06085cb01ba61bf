// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// Timezone names the IANA zone that defines "today". Empty means Local.
	Timezone string `koanf:"timezone"`

	// DefaultOwner scopes requests that carry no owner header.
	DefaultOwner string `koanf:"default_owner"`

	// BucketWeekDays and BucketMonthDays bound the dashboard due buckets.
	BucketWeekDays  int `koanf:"bucket_week_days"`
	BucketMonthDays int `koanf:"bucket_month_days"`

	// AgendaLimit caps the items returned for a selected day.
	AgendaLimit int `koanf:"agenda_limit"`

	// ListLimit caps list endpoints.
	ListLimit int `koanf:"list_limit"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval is how often process gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DBPath:                 "applytrack.db",
		DefaultOwner:           "local",
		BucketWeekDays:         7,
		BucketMonthDays:        30,
		AgendaLimit:            50,
		ListLimit:              500,
		MetricsEnabled:         true,
		MetricsRefreshInterval: 10 * time.Second,
		ShutdownTimeout:        10 * time.Second,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, tz, err)
	}
	return loc, nil
}

// Validate checks invariants between fields.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.BucketWeekDays <= 0 || c.BucketMonthDays <= 0:
		return fmt.Errorf("%w: bucket windows must be positive", ErrInvalidConfig)
	case c.BucketWeekDays >= c.BucketMonthDays:
		return fmt.Errorf("%w: bucket_week_days must be below bucket_month_days", ErrInvalidConfig)
	case c.AgendaLimit <= 0 || c.ListLimit <= 0:
		return fmt.Errorf("%w: limits must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	_, err := c.Location()
	return err
}

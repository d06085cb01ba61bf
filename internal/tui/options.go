package tui

import (
	"context"

	"github.com/okian/applytrack/internal/domain/generation"
	"github.com/okian/applytrack/pkg/logger"
)

// Option configures a Model.
type Option func(*Model)

// WithOwner sets the owner whose records are shown.
func WithOwner(owner string) Option {
	return func(m *Model) {
		if owner != "" {
			m.owner = owner
		}
	}
}

// WithTracker shares a generation tracker, normally the service's.
func WithTracker(t *generation.Tracker) Option {
	return func(m *Model) {
		if t != nil {
			m.loads = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithContext sets the context loads run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithTheme replaces the palette.
func WithTheme(t Theme) Option {
	return func(m *Model) {
		m.styles = NewStyles(t)
	}
}

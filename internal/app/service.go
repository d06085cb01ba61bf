// Package service provides the business service behind the HTTP API and
// the terminal dashboard: record passthroughs plus the dashboard views
// built by the calendar, urgency and progress aggregators.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/generation"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/internal/domain/urgency"
	"github.com/okian/applytrack/pkg/logger"
	"github.com/okian/applytrack/pkg/metrics"
)

const (
	defaultDBPath      = "applytrack.db"
	defaultOwner       = "local"
	defaultAgendaLimit = 50
	defaultListLimit   = 500
)

// Service implements the API dependencies for the application tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	loads *generation.Tracker

	// Configuration
	dbPath      string
	owner       string
	loc         *time.Location
	clock       func() time.Time
	windows     urgency.Windows
	agendaLimit int
	listLimit   int
	ownsStore   bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore uses an already opened store. The caller keeps ownership.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath sets the SQLite file Start opens when no store was given.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithLocation sets the zone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithBucketWindows sets the week and month due-bucket bounds in days.
func WithBucketWindows(week, month int) Option {
	return func(s *Service) {
		if week > 0 && month > week {
			s.windows = urgency.Windows{Week: week, Month: month}
		}
	}
}

// WithAgendaLimit caps the items returned for one day.
func WithAgendaLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.agendaLimit = n
		}
	}
}

// WithListLimit caps list results.
func WithListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.listLimit = n
		}
	}
}

// WithDefaultOwner sets the owner GetStats reports on.
func WithDefaultOwner(owner string) Option {
	return func(s *Service) {
		if owner != "" {
			s.owner = owner
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      defaultDBPath,
		owner:       defaultOwner,
		loc:         time.Local,
		clock:       time.Now,
		windows:     urgency.DefaultWindows,
		agendaLimit: defaultAgendaLimit,
		listLimit:   defaultListLimit,
		loads:       generation.New(generation.WithOnStale(metrics.RecordStaleLoad)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store unless one was supplied.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting application tracker service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath, repository.WithLogger(s.logger.Named("store")))
		if err != nil {
			return types.Wrap("service.Start", err)
		}
		s.store = store
		s.ownsStore = true
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}

	s.started = true
	s.logger.Info(ctx, "application tracker service started",
		logger.String("location", s.loc.String()),
		logger.Int("weekWindow", s.windows.Week),
		logger.Int("monthWindow", s.windows.Month),
		logger.Int("agendaLimit", s.agendaLimit),
	)

	return nil
}

// Stop releases the store if Start opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping application tracker service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "application tracker service stopped")
}

// Loads returns the tracker that tags asynchronous view loads.
func (s *Service) Loads() *generation.Tracker {
	return s.loads
}

// Now is the current instant in the configured location.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location is the zone that defines "today".
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) repo(op string) (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, types.NewKind(op, ErrNotStarted)
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started, store := s.started, s.store
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     started,
		"owner":       s.owner,
		"location":    s.loc.String(),
		"staleLoads":  s.loads.Stale(),
		"loadScopes":  s.loads.Scopes(),
		"agendaLimit": s.agendaLimit,
	}

	if started && store != nil {
		ctx := context.Background()
		if n, err := store.CountMySchools(ctx, s.owner); err == nil {
			stats["colleges"] = n
		}
		if n, err := store.CountApplications(ctx, s.owner); err == nil {
			stats["applications"] = n
		}
		if n, err := store.CountOpenTasks(ctx, s.owner); err == nil {
			stats["openTasks"] = n
		}
	}

	return stats
}

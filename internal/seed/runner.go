package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// WorkerChannelMultiplier sizes the job channel relative to the pool.
const WorkerChannelMultiplier = 2

// Run seeds the service at cfg.BaseURL and verifies the dashboards.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}

	// The server decides what "today" is; plan relative to its clock.
	probe := NewClient(cfg.BaseURL, cfg.Owner, cfg.Timeout)
	if err := probe.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	ov, err := probe.GetOverview(ctx)
	if err != nil {
		return stats, fmt.Errorf("read server date: %w", err)
	}
	today, err := dates.ParseISO(ov.Today, time.UTC)
	if err != nil {
		return stats, fmt.Errorf("read server date: %w", err)
	}

	plan := Generate(cfg, today)
	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("owner", plan.Owner),
		logger.String("today", plan.Today),
		logger.Int("schools", len(plan.Items)),
		logger.Int("workers", cfg.Workers))

	client := NewClient(cfg.BaseURL, plan.Owner, cfg.Timeout)
	if err := apply(ctx, cfg, log, client, plan, stats); err != nil {
		return stats, fmt.Errorf("seeding failed: %w", err)
	}

	checks, err := Verify(ctx, client, plan)
	stats.Checks = checks
	if err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := savePlan(cfg.OutputFile, plan); err != nil {
			log.Warn(ctx, "failed to save plan", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, nil
}

// apply creates the plan through the API with a pool of workers, one item
// per job.
func apply(ctx context.Context, cfg *Config, log logger.Logger, client *Client, plan *Plan, stats *Stats) error {
	workers := max(1, min(cfg.Workers, len(plan.Items)))
	jobs := make(chan Item, workers*WorkerChannelMultiplier)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		atomic.AddInt64(&stats.Failed, 1)
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				if ctx.Err() != nil {
					return
				}
				if err := applyItem(ctx, client, it, stats); err != nil {
					fail(fmt.Errorf("%s: %w", it.School.Name, err))
					continue
				}
				if cfg.Verbose {
					log.Info(ctx, "seeded school", logger.String("school", it.School.Name),
						logger.Int("tasks", len(it.Tasks)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, it := range plan.Items {
			select {
			case <-ctx.Done():
				return
			case jobs <- it:
			}
		}
	}()

	wg.Wait()

	for _, t := range plan.Loose {
		if err := applyTask(ctx, client, "", t, stats); err != nil {
			fail(fmt.Errorf("task %q: %w", t.Title, err))
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func applyItem(ctx context.Context, client *Client, it Item, stats *Stats) error {
	if err := client.CreateSchool(ctx, it.School); err != nil {
		return err
	}
	atomic.AddInt64(&stats.Schools, 1)

	mySchoolID, err := client.AddMySchool(ctx, it)
	if err != nil {
		return err
	}
	atomic.AddInt64(&stats.MySchools, 1)

	appID, err := client.CreateApplication(ctx, mySchoolID, it.Application)
	if err != nil {
		return err
	}
	atomic.AddInt64(&stats.Applications, 1)
	if it.Application.Submit {
		if err := client.SetApplicationStatus(ctx, appID, "Submitted"); err != nil {
			return err
		}
		atomic.AddInt64(&stats.Submitted, 1)
	}

	for _, t := range it.Tasks {
		if err := applyTask(ctx, client, appID, t, stats); err != nil {
			return err
		}
	}
	return nil
}

func applyTask(ctx context.Context, client *Client, appID string, t TaskSeed, stats *Stats) error {
	id, err := client.CreateTask(ctx, appID, t)
	if err != nil {
		return err
	}
	atomic.AddInt64(&stats.Tasks, 1)
	if !t.Done {
		return nil
	}
	if err := client.SetTaskDone(ctx, id, true); err != nil {
		return err
	}
	atomic.AddInt64(&stats.Completed, 1)
	return nil
}

// savePlan writes the plan as indented JSON.
func savePlan(filename string, plan *Plan) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	return os.WriteFile(filename, append(data, '\n'), filePermission)
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "seed run completed",
		logger.Int64("schools", stats.Schools),
		logger.Int64("mySchools", stats.MySchools),
		logger.Int64("applications", stats.Applications),
		logger.Int64("submitted", stats.Submitted),
		logger.Int64("tasks", stats.Tasks),
		logger.Int64("completed", stats.Completed),
		logger.Int64("failed", stats.Failed),
		logger.Int("checks", stats.Checks),
		logger.Duration("duration", stats.Duration))
}

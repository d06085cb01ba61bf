package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/config"
	"github.com/okian/applytrack/internal/tui"
	"github.com/okian/applytrack/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "applytrack-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		owner   = flag.String("owner", "", "Owner whose dashboard is shown (default: default_owner)")
		db      = flag.String("db", "", "SQLite database path (default: db_path)")
		logFile = flag.String("log", "applytrack-tui.log", "File the dashboard logs to")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *db != "" {
		cfg.DBPath = *db
	}
	if *owner == "" {
		*owner = cfg.DefaultOwner
	}

	// The terminal belongs to the dashboard, so logs go to a file.
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Output: f}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Named("tui")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithDBPath(cfg.DBPath),
		service.WithLocation(loc),
		service.WithDefaultOwner(cfg.DefaultOwner),
		service.WithBucketWindows(cfg.BucketWeekDays, cfg.BucketMonthDays),
		service.WithAgendaLimit(cfg.AgendaLimit),
		service.WithListLimit(cfg.ListLimit),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	dash := tui.New(svc,
		tui.WithOwner(*owner),
		tui.WithTracker(svc.Loads()),
		tui.WithLogger(log),
		tui.WithContext(ctx),
	)
	log.Info(ctx, "dashboard starting", logger.String("owner", *owner), logger.String("db_path", cfg.DBPath))

	p := tea.NewProgram(dash, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/applytrack/internal/seed"
	"github.com/okian/applytrack/pkg/logger"
)

// Default configuration constants.
const (
	defaultSchools     = 12
	defaultTasksPerApp = 3
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		owner    = flag.String("owner", "", "Owner to seed (default: a fresh seed-XXXXXXXX owner)")
		schools  = flag.Int("schools", defaultSchools, "Schools to put on the list")
		tasks    = flag.Int("tasks", defaultTasksPerApp, "Tasks per application")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seedVal  = flag.Uint64("seed", 0, "Random seed (default: from the clock)")
		output   = flag.String("output", "", "Write the generated plan to this JSON file")
		logFile  = flag.String("log", "", "Also log to this file")
		verbose  = flag.Bool("verbose", false, "Log every seeded school")
		showHelp = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *showHelp {
		seed.ShowHelp()
		return
	}

	closer, err := seed.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:     *baseURL,
		Owner:       *owner,
		Schools:     *schools,
		TasksPerApp: *tasks,
		Workers:     *workers,
		Timeout:     *timeout,
		Seed:        *seedVal,
		OutputFile:  *output,
		Verbose:     *verbose,
		Log:         logger.Named("seed"),
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		cancel()
		stop()
		closer.Close()
		os.Exit(1)
	}
}

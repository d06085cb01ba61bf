package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/applytrack/pkg/logger"
)

// SetupLogging initializes the global logger on stdout, and additionally
// on logFile when one is given. The returned closer releases the file.
func SetupLogging(logFile string) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}
	if err := logger.InitWith(logger.Options{Output: out}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`applytrack seed
===============

Creates a demo school list through the HTTP API and checks that the
dashboards report it back.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -owner string
        Owner to seed; must be empty (default: a fresh seed-XXXXXXXX owner)
  -schools int
        Schools to put on the list (default 12, at most 18)
  -tasks int
        Tasks per application (default 3)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Random seed (default: from the clock)
  -output string
        Write the generated plan to this JSON file
  -log string
        Also log to this file
  -verbose
        Log every seeded school
  -help
        Show this help message

Examples:
  # Seed a running server with defaults
  go run ./cmd/seed

  # Reproducible plan for a named owner
  go run ./cmd/seed -owner demo -seed 42 -output plan.json
`)
}

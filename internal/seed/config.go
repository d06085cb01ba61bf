package seed

import (
	"time"

	"github.com/okian/applytrack/pkg/logger"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Owner       string        // Owner the data is created for; a fresh one is generated when empty
	Schools     int           // Number of schools to put on the list
	TasksPerApp int           // Tasks attached to each application
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Random seed; zero picks one from the clock
	OutputFile  string        // Optional file the generated plan is written to
	Verbose     bool          // Log every request
	Log         logger.Logger // Defaults to a no-op logger
}

// Stats holds run statistics.
type Stats struct {
	Schools      int64
	MySchools    int64
	Applications int64
	Tasks        int64
	Completed    int64
	Submitted    int64
	Failed       int64
	Checks       int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

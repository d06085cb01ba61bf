package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/applytrack/internal/adapters/importer"
	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/config"
	"github.com/okian/applytrack/pkg/logger"
)

func main() {
	var (
		file  = flag.String("file", "", "Export document to import (default: stdin)")
		owner = flag.String("owner", "", "Owner the rows are imported for (default: default_owner)")
		db    = flag.String("db", "", "SQLite database path (default: db_path)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Output: os.Stderr}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("import")

	if *db != "" {
		cfg.DBPath = *db
	}
	if *owner == "" {
		*owner = cfg.DefaultOwner
	}

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Error(ctx, "open export", logger.String("file", *file), logger.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	store, err := repository.Open(ctx, cfg.DBPath, repository.WithLogger(log))
	if err != nil {
		log.Error(ctx, "open store", logger.String("db_path", cfg.DBPath), logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	if _, err := importer.Import(ctx, store, *owner, in, log); err != nil {
		log.Error(ctx, "import failed", logger.Error(err))
		store.Close()
		os.Exit(1)
	}
}

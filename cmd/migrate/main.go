package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/logger"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		fmt.Println(kv.Schema)
		return
	}

	logger.Infow("Running database migrations", "host", cfg.Postgres.Host)

	// Connecting ensures the records table exists
	store, err := kv.NewPostgresStore(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}
	defer store.Close()

	logger.Info("Migrations completed successfully")
}

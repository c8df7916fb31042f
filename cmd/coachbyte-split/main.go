package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/config"
	"github.com/jbrinkw/coachbyte/internal/split"
	"github.com/jbrinkw/coachbyte/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to split template YAML (required)")
	dryRun := flag.Bool("dry-run", false, "validate and report without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachbyte-split -config config.yaml -file split.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	// Parse and validate before touching the database
	file, err := split.Load(*filePath)
	if err != nil {
		log.Error("failed to read split file", "error", err)
		os.Exit(1)
	}
	if _, err := file.Plan(); err != nil {
		log.Error("invalid split file", "error", err)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := storage.Migrate(cfg.Database); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode, no data will be written to the database")
	}

	// Connect database
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("database connected")

	loc, err := cfg.Day.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}
	svc := coach.New(store, loc, cfg.Day.StartMinutes(), log)

	// Run import
	stats, err := split.New(svc, log, *dryRun).Import(ctx, file)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		store.Close()
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *split.Stats) {
	log.Info("split import stats",
		"days_replaced", stats.DaysReplaced,
		"days_cleared", stats.DaysCleared,
		"sets_written", stats.SetsWritten,
		"notes_updated", stats.NotesUpdated,
	)
}

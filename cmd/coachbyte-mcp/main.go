package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/config"
	"github.com/jbrinkw/coachbyte/internal/logging"
	"github.com/jbrinkw/coachbyte/internal/mcp"
	"github.com/jbrinkw/coachbyte/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "CoachByte server URL; tools call its REST API instead of a local database")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(logging.NewHandler(os.Stderr, logging.Params{Level: *logLevel}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	ds, closeFn, err := dataSource(*configPath, *remote, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		closeFn()
		os.Exit(1)
	}
}

func dataSource(configPath, remote string, log *slog.Logger) (mcp.DataSource, func(), error) {
	if remote != "" {
		log.Info("remote mode", "url", remote)
		return mcp.NewHTTPClient(remote), func() {}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := storage.Migrate(cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	loc, err := cfg.Day.Location()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.Open(context.Background(), cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting database: %w", err)
	}
	log.Info("local mode", "driver", cfg.Database.Driver)

	svc := coach.New(store, loc, cfg.Day.StartMinutes(), log)
	closeFn := func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", "error", err)
		}
	}
	return svc, closeFn, nil
}

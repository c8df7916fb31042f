package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/config"
	"github.com/jbrinkw/coachbyte/internal/logging"
	"github.com/jbrinkw/coachbyte/internal/mcp"
	"github.com/jbrinkw/coachbyte/internal/metrics"
	"github.com/jbrinkw/coachbyte/internal/server"
	"github.com/jbrinkw/coachbyte/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn("failed to load .env", "error", err)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(logging.Params{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	defer logCloser.Close()
	log.Info("CoachByte starting", "version", Version, "driver", cfg.Database.Driver)

	if err := run(cfg, log, *migrateOnly); err != nil {
		log.Error("fatal", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, migrateOnly bool) (err error) {
	// Run migrations
	if err := storage.Migrate(cfg.Database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	loc, err := cfg.Day.Location()
	if err != nil {
		return err
	}

	// Connect database
	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	defer func() { err = multierr.Append(err, store.Close()) }()
	log.Info("database connected")

	reg := metrics.NewRegistry()
	m := metrics.NewManager("coachbyte", "", reg)

	svc := coach.New(store, loc, cfg.Day.StartMinutes(), log, coach.WithMetrics(m))
	log.Info("logical day", "date", svc.LogicalToday(), "timezone", loc.String(), "start_time", cfg.Day.StartTime)

	srv := server.New(svc, m, reg, log)
	srv.SetMCP(mcp.NewHTTPHandler(mcp.New(svc, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start failed: %w", err)
		}
		defer func() { err = multierr.Append(err, tsServer.Close()) }()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client failed: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen failed: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

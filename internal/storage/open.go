package storage

import (
	"context"
	"fmt"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/config"
	"github.com/jbrinkw/coachbyte/internal/storage/sqlite"
)

// Store is a coach.Store that holds a connection.
type Store interface {
	coach.Store
	Close() error
}

// Migrate applies the embedded migrations for the configured driver.
func Migrate(cfg config.DatabaseConfig) error {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.RunMigrations(cfg.Path)
	case config.DriverPostgres, "":
		return RunMigrations(cfg.DSN())
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Path, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres, "":
		db, err := New(ctx, cfg.DSN(), cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

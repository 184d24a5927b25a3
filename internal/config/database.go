package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/rongwang/sitecrew-server/internal/retry"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know about
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SetupDatabase opens the configured database, applies migrations and
// returns the connection pool
func SetupDatabase(ctx context.Context, cfg *Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := OpenDatabase(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDatabase connects to the database, retrying transient connection errors
func OpenDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	if cfg.Driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.ConnectRetries

	attempt := 0
	db, err := retry.DoWithResult(ctx, retryCfg, func() (*sqlx.DB, error) {
		attempt++
		db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.GetDSN())
		if err != nil {
			logger.Warn("Database connection attempt failed",
				zap.String("driver", cfg.Driver),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	if cfg.Driver == DriverSQLite {
		// A single writer keeps SQLite from returning SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	logger.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/config"
)

// NewSQLiteDB opens a migrated SQLite database in a per-test temp directory.
// The connection is closed when the test finishes.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			Path:           filepath.Join(t.TempDir(), "test.db"),
			ConnectRetries: 0,
		},
	}

	db, err := config.SetupDatabase(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

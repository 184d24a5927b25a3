package testutils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/config"
)

const postgresImage = "postgres:16-alpine"

var (
	sharedPostgres     *sqlx.DB
	sharedPostgresOnce sync.Once
	sharedPostgresErr  error
)

// GetPostgresDB returns a shared, migrated PostgreSQL database running in a
// container. The container is started once per test binary.
func GetPostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedPostgresOnce.Do(func() {
		sharedPostgres, sharedPostgresErr = setupPostgres()
	})

	if sharedPostgresErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedPostgresErr)
	}

	return sharedPostgres
}

func setupPostgres() (*sqlx.DB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "sitecrew_test",
			"POSTGRES_USER":     "sitecrew",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid container port %q: %w", port.Port(), err)
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         config.DriverPostgres,
			Host:           host,
			Port:           portNum,
			Username:       "sitecrew",
			Password:       "test_password",
			DBName:         "sitecrew_test",
			SSLMode:        "disable",
			MaxOpenConns:   10,
			MaxIdleConns:   2,
			ConnectRetries: 5,
		},
	}

	return config.SetupDatabase(ctx, cfg, zap.NewNop())
}

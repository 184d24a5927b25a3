package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultJWTSecret is the development signing secret. Release servers refuse it.
const DefaultJWTSecret = "your-secret-key-here"

// ReleaseMode is the GIN_MODE of a production server
const ReleaseMode = "release"

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application.
// Values come from an optional YAML file (CONFIG_PATH) and environment
// variables; environment variables always win.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Location LocationConfig `yaml:"location"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	Mode            string        `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Username       string `yaml:"username" env:"DB_USERNAME" env-default:"postgres"`
	Password       string `yaml:"-" env:"DB_PASSWORD" env-default:"password"`
	DBName         string `yaml:"name" env:"DB_NAME" env-default:"sitecrew"`
	SSLMode        string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	TestDBName     string `yaml:"test_name" env:"TEST_DB_NAME" env-default:"sitecrew_test"` // Separate database for testing
	Path           string `yaml:"path" env:"DB_PATH" env-default:"./data/sitecrew.db"`      // SQLite file
	MaxOpenConns   int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns   int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnectRetries int    `yaml:"connect_retries" env:"DB_CONNECT_RETRIES" env-default:"5"`
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret string        `yaml:"-" env:"JWT_SECRET" env-default:"your-secret-key-here"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// LocationConfig controls the fallback location lookup used when a device
// does not report its own coordinates.
type LocationConfig struct {
	LookupURL string        `yaml:"lookup_url" env:"LOCATION_LOOKUP_URL" env-default:""`
	Timeout   time.Duration `yaml:"timeout" env:"LOCATION_TIMEOUT" env-default:"10s"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // json or console
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", c.Path)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// LoadConfig loads the configuration from CONFIG_PATH (if set) and the environment
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	var err error
	if path, ok := os.LookupEnv("CONFIG_PATH"); ok && path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}

	if c.Location.Timeout <= 0 {
		return fmt.Errorf("LOCATION_TIMEOUT must be positive")
	}

	return nil
}

// ValidateServer checks the settings only the HTTP server depends on
func (c *Config) ValidateServer() error {
	if c.Server.Mode == ReleaseMode && c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set when GIN_MODE is %s", ReleaseMode)
	}
	return nil
}

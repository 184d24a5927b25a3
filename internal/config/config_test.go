package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, ReleaseMode, cfg.Server.Mode)
	assert.Contains(t, cfg.Database.GetDSN(), "_time_format=sqlite")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		secret  string
		wantErr bool
	}{
		{"Release with default secret", ReleaseMode, DefaultJWTSecret, true},
		{"Release with own secret", ReleaseMode, "s3cr3t-from-vault", false},
		{"Debug with default secret", "debug", DefaultJWTSecret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", DriverSQLite)
			t.Setenv("GIN_MODE", tt.mode)
			t.Setenv("JWT_SECRET", tt.secret)

			cfg, err := LoadConfig()
			require.NoError(t, err)

			err = cfg.ValidateServer()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

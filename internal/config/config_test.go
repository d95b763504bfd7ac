package config_test

import (
	"testing"
	"time"

	"election-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "unit-test-no-file")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_USER", "vote_admin")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("EVENTS_DRIVER", "nats")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "unit-test-no-file", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "vote_admin", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "nats", cfg.Events.Driver)
	assert.Equal(t, "elections.events", cfg.Events.NATS.Subject)
	assert.Equal(t, 15, cfg.Auth.AccessTTLMinutes)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxPhotoSize)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeoutDuration())
}

func TestLoad_ShutdownTimeoutOverride(t *testing.T) {
	t.Setenv("ENV", "unit-test-no-file")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS", "30")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeoutDuration())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", "unit-test-no-file")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate_UnknownEventsDriver(t *testing.T) {
	cfg := &config.Config{
		Auth:   config.AuthConfig{JWTSecret: "s"},
		Events: config.EventsConfig{Driver: "rabbit"},
	}
	assert.ErrorContains(t, cfg.Validate(), "rabbit")
}

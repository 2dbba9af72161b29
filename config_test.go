package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "host=localhost user=test dbname=test")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3100", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "@hourly", cfg.SweepSchedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("REFRESH_TOKEN_TTL", "168h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
}

func TestLoadConfigFailsFastOnMissingSecrets(t *testing.T) {
	t.Run("no access secret", func(t *testing.T) {
		t.Setenv("DB_DSN", "host=localhost")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
	t.Run("no refresh secret", func(t *testing.T) {
		t.Setenv("DB_DSN", "host=localhost")
		t.Setenv("JWT_SECRET", "access-secret")
		t.Setenv("REFRESH_TOKEN_SECRET", "")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFRESH_TOKEN_SECRET")
	})
	t.Run("no dsn", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("JWT_SECRET", "access-secret")
		t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_DSN")
	})
}

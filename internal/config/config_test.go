package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callguide/roteiro/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, -1, cfg.AutoLogoutHour, "auto-logout disabled by default")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ROTEIRO_LISTEN_ADDR", ":9090")
	t.Setenv("ROTEIRO_SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ROTEIRO_AUTO_LOGOUT_HOUR", "19")
	t.Setenv("ROTEIRO_AUTO_LOGOUT_MINUTE", "30")
	t.Setenv("ROTEIRO_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 19, cfg.AutoLogoutHour)
	assert.Equal(t, 30, cfg.AutoLogoutMinute)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("ROTEIRO_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/roteiro?sslmode=disable")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Backend)
}

func TestLoad_RejectsBadInts(t *testing.T) {
	t.Setenv("REDIS_DB", "three")

	_, err := config.Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

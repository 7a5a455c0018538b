//go:build !integration && !e2e

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, 64, cfg.Inference.QueueSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_ROUTER_PORT", "9999")
	t.Setenv("LLM_ROUTER_DB_PATH", ":memory:")
	t.Setenv("LLM_ROUTER_RATE_LIMIT_ENABLED", "off")
	t.Setenv("LLM_ROUTER_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Zero(t, cfg.Cache.TTLSeconds)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("LLM_ROUTER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_INT", "42")
	t.Setenv("X_INT_BAD", "forty-two")
	t.Setenv("X_BOOL", "yes")

	assert.Equal(t, "value", getEnvStr("X_STR", "d"))
	assert.Equal(t, "d", getEnvStr("X_MISSING", "d"))
	assert.Equal(t, 42, getEnvInt("X_INT", 1))
	assert.Equal(t, 1, getEnvInt("X_INT_BAD", 1))
	assert.True(t, getEnvBool("X_BOOL", false))
	assert.True(t, getEnvBool("X_MISSING", true))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_CACHE_BACKEND", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "redis", cfg.Access.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.Access.CapabilityCacheTTL)
	assert.Equal(t, []string{"team_management", "task_management", "reports_view"}, cfg.Access.DefaultTeamGrants)
	assert.Equal(t, "console:notifications", cfg.Notification.Channel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ACCESS_CACHE_BACKEND", "Memory")
	t.Setenv("ACCESS_CAPABILITY_CACHE_TTL_SECONDS", "10")
	t.Setenv("ACCESS_DEFAULT_TEAM_GRANTS", " chat , ,settings")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Access.CacheBackend)
	assert.Equal(t, 10*time.Second, cfg.Access.CapabilityCacheTTL)
	assert.Equal(t, []string{"chat", "settings"}, cfg.Access.DefaultTeamGrants)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_RejectsUnknownCacheBackend(t *testing.T) {
	t.Setenv("ACCESS_CACHE_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	require.Error(t, err)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intentd")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "intentd.db", cfg.CachePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 120, cfg.DailyGoalMinutes)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intentd")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_PATH", "/var/lib/intentd/cache.db")
	t.Setenv("DAILY_GOAL_MINUTES", "90")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/var/lib/intentd/cache.db", cfg.CachePath)
	assert.Equal(t, 90, cfg.DailyGoalMinutes)
}

func TestLoad_RejectsBadDailyGoal(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intentd")

	t.Setenv("DAILY_GOAL_MINUTES", "abc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DAILY_GOAL_MINUTES", "-10")
	_, err = Load()
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "TZ", "DATABASE_URL", "PPR_SERVER_PORT", "PPR_RECOMPUTE_CONCURRENCY", "PPR_RATE_LIMIT_WINDOW"} {
		t.Setenv(key, "")
	}
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Asia/Bangkok", cfg.Server.Timezone)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Recompute.Concurrency)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://db/ppr")
	t.Setenv("PPR_LOG_LEVEL", "debug")
	t.Setenv("PPR_RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://db/ppr", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("TZ", "")
	yaml := "server:\n  timezone: UTC\nrecompute:\n  concurrency: 8\ntracing:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Server.Timezone)
	assert.Equal(t, 8, cfg.Recompute.Concurrency)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TZ", "Mars/Olympus")
	_, err := Load("")
	assert.Error(t, err)
}

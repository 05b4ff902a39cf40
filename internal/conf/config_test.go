package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
jobs:
  trendingCron: "@every 30m"
  syncLikesCron: "@every 6h"
  cleanupCron: "@every 48h"
  startupDelaySeconds: 10
cache:
  trendingTTLSeconds: 60
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "@every 30m", cfg.Jobs.TrendingCron)
	assert.Equal(t, "@every 6h", cfg.Jobs.SyncLikesCron)
	assert.Equal(t, "@every 48h", cfg.Jobs.CleanupCron)
	assert.Equal(t, 10, cfg.Jobs.StartupDelaySeconds)
	assert.Equal(t, 60, cfg.Cache.TrendingTTLSeconds)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":8080"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// 缺省的任务间隔退到固定节奏：热度 1h、同步 12h、清理 24h
	assert.Equal(t, "@every 1h", cfg.Jobs.TrendingCron)
	assert.Equal(t, "@every 12h", cfg.Jobs.SyncLikesCron)
	assert.Equal(t, "@every 24h", cfg.Jobs.CleanupCron)
	assert.Equal(t, 5, cfg.Jobs.StartupDelaySeconds)
	assert.Equal(t, 300, cfg.Cache.TrendingTTLSeconds)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("NEWSHUB_TEST_PORT", ":7070")
	path := writeConfig(t, `
server:
  port: "${NEWSHUB_TEST_PORT}"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

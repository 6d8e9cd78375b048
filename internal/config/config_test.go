package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VERITAS_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.NewsAPIKey)
	assert.Equal(t, 5*time.Second, cfg.SentimentTimeout)
	assert.True(t, cfg.MonitoringSchedules)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VERITAS_DATA_DIR", t.TempDir())
	t.Setenv("VERITAS_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("NEWS_API_KEY", "secret")
	t.Setenv("SENTIMENT_TIMEOUT_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "secret", cfg.NewsAPIKey)
	assert.Equal(t, 10*time.Second, cfg.SentimentTimeout)
}

func TestDatabasePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERITAS_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.DataDir, "statements.db"), cfg.StatementsDBPath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "assessments.db"), cfg.AssessmentsDBPath())
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("VERITAS_DATA_DIR", t.TempDir())
	t.Setenv("VERITAS_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

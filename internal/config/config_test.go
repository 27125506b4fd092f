package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "slopwatch", cfg.Service.Name)
	assert.Equal(t, 9090, cfg.Service.MetricsPort)
	assert.Equal(t, "slopwatch.db", cfg.Database.DSN)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 2*time.Second, cfg.Gemini.MinInterval())
	assert.Equal(t, 25, cfg.Run.TargetCount)
	assert.Equal(t, 8*time.Minute, cfg.Run.RuntimeBudget)
	assert.Equal(t, int64(1000), cfg.Run.MinSubscribers)
	assert.Equal(t, int64(10), cfg.Run.MinVideos)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  name: slopwatch-staging
database:
  dsn: postgres://localhost/slopwatch
run:
  target_count: 5
  runtime_budget: 2m
discovery:
  keywords:
    - nursery rhymes
    - lofi
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "slopwatch-staging", cfg.Service.Name)
	assert.Equal(t, "postgres://localhost/slopwatch", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Run.TargetCount)
	assert.Equal(t, 2*time.Minute, cfg.Run.RuntimeBudget)
	assert.Equal(t, []string{"nursery rhymes", "lofi"}, cfg.Discovery.Keywords)
	// Untouched fields still get defaults.
	assert.Equal(t, 9090, cfg.Service.MetricsPort)
}

func TestLoad_CredentialsFromEnvironment(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("SLOPWATCH_GEMINI_API_KEY", "gm-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
	assert.Equal(t, "gm-key", cfg.Gemini.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllMissingCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "youtube.api_key")
	assert.Contains(t, err.Error(), "gemini.api_key")
}

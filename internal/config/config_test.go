package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Polling.Leaderboard)
	assert.Equal(t, 10*time.Second, cfg.Polling.Notifications)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "minio", cfg.Storage.Type)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9090"
api:
  base_url: "http://api.internal:7700/"
polling:
  leaderboard: 2s
session:
  store: redis
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("API_URL", "https://training.example.org/")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://training.example.org", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Polling.Leaderboard)
	assert.Equal(t, "redis", cfg.Session.Store)
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := &Config{API: APIConfig{BaseURL: "http://x"}, Session: SessionConfig{Store: "cookie"}}
	assert.Error(t, cfg.Validate())
}

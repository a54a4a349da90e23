package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
backend:
  mode: remote
  base_url: http://clinic.local/api
  timeout_seconds: 5
session:
  max_active: 20
history:
  ranges:
    parent_general:
      - key: semua
        title: Semua
        min: 1
        max: 999
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, dir, cfg.Path)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 20, cfg.Session.MaxActive)
	assert.Equal(t, 30*time.Second, cfg.Session.LoadTimeout())
	assert.Equal(t, 600*time.Second, cfg.Schema.CacheTTL())
	assert.Equal(t, 600, cfg.RateLimit.MaxRequests)
	require.Len(t, cfg.History.Ranges["parent_general"], 1)
	assert.Equal(t, 999, cfg.History.Ranges["parent_general"][0].Max)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "backend:\n  mode: remote\n  base_url: http://a\n")
	t.Setenv("BACKEND_BASE_URL", "http://b")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://b", cfg.Backend.BaseURL)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := map[string]string{
		"short secret":    "server:\n  mode: release\njwt:\n  secret: short\nbackend:\n  mode: local\n",
		"remote no url":   "backend:\n  mode: remote\n",
		"unknown backend": "backend:\n  mode: carrier-pigeon\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

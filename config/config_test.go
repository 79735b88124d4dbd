package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, 100, cfg.Capacity.UndoLog)
	assert.Equal(t, 100, cfg.Capacity.Journal)
	assert.False(t, cfg.Database.Enabled())
	assert.True(t, cfg.Redis.Disabled)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP.Port, cfg.HTTP.Port)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
app:
  environment: production
http:
  port: 8080
  read_timeout: 3s
capacity:
  undo_log: 10
  journal: 20
database:
  url: postgres://u:p@localhost:5432/reportcard
redis:
  disabled: false
  stream: custom:journal
observability:
  log_format: text
`)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JOURNAL_CAPACITY", "7")
	t.Setenv("JOURNAL_FLUSH_INTERVAL", "30s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10, cfg.Capacity.UndoLog)
	assert.Equal(t, 7, cfg.Capacity.Journal)
	assert.Equal(t, 30*time.Second, cfg.Journal.FlushInterval)
	assert.True(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Disabled)
	assert.Equal(t, "custom:journal", cfg.Redis.Stream)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.App.Debug)
}

func TestLoad_InvalidEnvValuesKeepDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	t.Setenv("HTTP_READ_TIMEOUT", "soon")
	t.Setenv("HTTP_ENABLE_CORS", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.True(t, cfg.HTTP.EnableCORS)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "http: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "HTTP_PORT must be 1-65535"},
		{"undo capacity", func(c *Config) { c.Capacity.UndoLog = 0 }, "UNDO_LOG_CAPACITY must be positive"},
		{"journal capacity", func(c *Config) { c.Capacity.Journal = -1 }, "JOURNAL_CAPACITY must be positive"},
		{"attempts", func(c *Config) { c.Journal.SinkMaxAttempts = 0 }, "JOURNAL_SINK_MAX_ATTEMPTS must be positive"},
		{"flush interval", func(c *Config) { c.Journal.FlushInterval = -time.Second }, "JOURNAL_FLUSH_INTERVAL must not be negative"},
		{"stream", func(c *Config) { c.Redis.Disabled = false; c.Redis.Stream = "" }, "REDIS_STREAM is required"},
		{"log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "LOG_FORMAT must be json or text"},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("UNDO_LOG_CAPACITY", "0")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation")
}

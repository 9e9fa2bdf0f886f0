package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "[::]:3319", cfg.Listen)
	assert.Equal(t, "https://zaiko.io", cfg.BaseURL)
	assert.Equal(t, "https://media.zaiko.io/", cfg.ImagePrefix)
	assert.Equal(t, 400, cfg.CanvasSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, CacheControlFrozen, cfg.CacheControl)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ZZAPI_LISTEN", "127.0.0.1:9000")
	t.Setenv("ZZAPI_BASE_URL", "http://localhost:8081")
	t.Setenv("ZZAPI_CANVAS_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "http://localhost:8081", cfg.BaseURL)
	// Only the listen address and base url are environment-configurable.
	assert.Equal(t, 400, cfg.CanvasSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ZZAPI_LISTEN=:4000\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("ZZAPI_LISTEN")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Listen)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:   "remaining mode",
			modify: func(c *Config) { c.CacheControl = CacheControlRemaining },
		},
		{
			name:    "empty listen",
			modify:  func(c *Config) { c.Listen = "" },
			wantErr: "listen address is empty",
		},
		{
			name:    "relative base url",
			modify:  func(c *Config) { c.BaseURL = "/event" },
			wantErr: "base url",
		},
		{
			name:    "ftp image prefix",
			modify:  func(c *Config) { c.ImagePrefix = "ftp://media.zaiko.io/" },
			wantErr: "image prefix",
		},
		{
			name:    "canvas too large",
			modify:  func(c *Config) { c.CanvasSize = MaxCanvasSize + 1 },
			wantErr: "canvas size",
		},
		{
			name:    "zero canvas",
			modify:  func(c *Config) { c.CanvasSize = 0 },
			wantErr: "canvas size",
		},
		{
			name:    "negative ttl",
			modify:  func(c *Config) { c.CacheTTL = -time.Second },
			wantErr: "cache ttl must be positive",
		},
		{
			name:    "zero failure max-age",
			modify:  func(c *Config) { c.FailureMaxAge = 0 },
			wantErr: "failure max-age must be positive",
		},
		{
			name:    "unknown mode",
			modify:  func(c *Config) { c.CacheControl = "stale" },
			wantErr: "unknown cache-control mode",
		},
		{
			name:    "no body limit",
			modify:  func(c *Config) { c.MaxImageBytes = 0 },
			wantErr: "max image bytes",
		},
		{
			name:    "no pixel budget",
			modify:  func(c *Config) { c.MaxImagePixels = -1 },
			wantErr: "max image pixels",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "unknown log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Listen = ""
	cfg.UserAgent = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, 2, len(strings.Split(err.Error(), "\n")))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Auth.ExpiryCheckInterval)
	assert.Equal(t, 12, cfg.Search.PageSize)
	assert.Equal(t, 200, cfg.Search.ScrollThreshold)
	assert.Equal(t, "session.db", filepath.Base(cfg.GetStoragePath()))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MKT_API_URL", "https://api.example.com/v1")
	t.Setenv("MKT_API_TIMEOUT", "3s")
	t.Setenv("MKT_API_MAX_RETRIES", "4")
	t.Setenv("MKT_API_RATE_LIMIT", "2.5")
	t.Setenv("MKT_AUTH_EXPIRY_CHECK_INTERVAL", "30s")
	t.Setenv("MKT_SEARCH_PAGE_SIZE", "24")
	t.Setenv("MKT_STORAGE_DIR_PERMISSIONS", "750")
	t.Setenv("MKT_APP_VERBOSE", "true")
	t.Setenv("MKT_LOG_FORMAT", "json")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.API.MaxRetries)
	assert.Equal(t, 2.5, cfg.API.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Auth.ExpiryCheckInterval)
	assert.Equal(t, 24, cfg.Search.PageSize)
	assert.Equal(t, uint32(0750), cfg.Storage.DirPermissions)
	assert.True(t, cfg.Application.Verbose)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromEnvironment_MalformedValuesKeepDefaults(t *testing.T) {
	t.Setenv("MKT_API_TIMEOUT", "soon")
	t.Setenv("MKT_SEARCH_PAGE_SIZE", "many")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 12, cfg.Search.PageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"zero api timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "api.max_retries"},
		{"retries without delay", func(c *Config) { c.API.RetryBaseDelay = 0 }, "api.retry_base_delay"},
		{"rate without burst", func(c *Config) { c.API.RateBurst = 0 }, "api.rate_burst"},
		{"empty storage dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir"},
		{"zero expiry interval", func(c *Config) { c.Auth.ExpiryCheckInterval = 0 }, "auth.expiry_check_interval"},
		{"page size too big", func(c *Config) { c.Search.PageSize = 500 }, "search.page_size"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoader_EnvFileIsLayeredUnderEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "MKT_API_URL=https://from-file.example.com\nMKT_SEARCH_PAGE_SIZE=6\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

	// godotenv never overrides variables that are already set.
	t.Setenv("MKT_SEARCH_PAGE_SIZE", "8")
	t.Setenv("MKT_API_URL", "")
	os.Unsetenv("MKT_API_URL")

	cfg, err := NewLoader(envFile).Load()
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("MKT_API_URL") })

	assert.Equal(t, "https://from-file.example.com", cfg.API.BaseURL)
	assert.Equal(t, 8, cfg.Search.PageSize)
}

func TestLoader_MissingExplicitEnvFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.env")).Load()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "env_file", cfgErr.Field)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv("MKT_STORAGE_DIR", t.TempDir())
	url := "https://override.example.com"
	pageSize := 30
	verbose := true
	timeout := 2 * time.Second

	cfg, err := NewLoader().LoadWithOverrides(&ConfigOverrides{
		APIURL:     &url,
		PageSize:   &pageSize,
		Verbose:    &verbose,
		APITimeout: &timeout,
	})
	require.NoError(t, err)

	assert.Equal(t, url, cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.Search.PageSize)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Application.Verbose)
	assert.Equal(t, "info", cfg.Logging.Level, "verbose raises the log level when none is given")
}

func TestLoadWithOverrides_InvalidOverrideFails(t *testing.T) {
	t.Setenv("MKT_STORAGE_DIR", t.TempDir())
	bad := 0
	_, err := NewLoader().LoadWithOverrides(&ConfigOverrides{PageSize: &bad})
	require.Error(t, err)
}

func TestParseWithFallback(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDurationWithFallback("5s", time.Second))
	assert.Equal(t, time.Second, ParseDurationWithFallback("x", time.Second))
	assert.Equal(t, 7, ParseIntWithFallback("7", 1))
	assert.Equal(t, 1, ParseIntWithFallback("seven", 1))
	assert.True(t, ParseBoolWithFallback("true", false))
	assert.False(t, ParseBoolWithFallback("maybe", false))
	assert.Equal(t, uint32(0700), ParseUint32WithFallback("700", 8, 0))
	assert.Equal(t, uint32(1), ParseUint32WithFallback("9z", 8, 1))
}

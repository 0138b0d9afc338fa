package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration options for the marketplace client
type Config struct {
	API         APIConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Search      SearchConfig
	Application ApplicationConfig
	Logging     LoggingConfig
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL        string        `env:"MKT_API_URL"`
	Timeout        time.Duration `env:"MKT_API_TIMEOUT"`
	MaxRetries     int           `env:"MKT_API_MAX_RETRIES"`
	RetryBaseDelay time.Duration `env:"MKT_API_RETRY_DELAY"`
	// RateLimit is the sustained request rate in requests per second; 0 disables throttling.
	RateLimit float64 `env:"MKT_API_RATE_LIMIT"`
	RateBurst int     `env:"MKT_API_RATE_BURST"`
}

// StorageConfig holds the local session store settings
type StorageConfig struct {
	Dir            string        `env:"MKT_STORAGE_DIR"`
	Filename       string        `env:"MKT_STORAGE_FILENAME"`
	QueryTimeout   time.Duration `env:"MKT_STORAGE_QUERY_TIMEOUT"`
	DirPermissions uint32        `env:"MKT_STORAGE_DIR_PERMISSIONS"`
}

// AuthConfig holds session lifecycle settings
type AuthConfig struct {
	ExpiryCheckInterval time.Duration `env:"MKT_AUTH_EXPIRY_CHECK_INTERVAL"`
}

// SearchConfig holds search pagination settings
type SearchConfig struct {
	PageSize        int `env:"MKT_SEARCH_PAGE_SIZE"`
	ScrollThreshold int `env:"MKT_SEARCH_SCROLL_THRESHOLD"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"MKT_APP_TIMEOUT"`
	Verbose bool          `env:"MKT_APP_VERBOSE"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	Level  string `env:"MKT_LOG_LEVEL"`
	Format string `env:"MKT_LOG_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultStorageDir := filepath.Join(homeDir, ".mkt")

	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:3000/api",
			Timeout:        10 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: 500 * time.Millisecond,
			RateLimit:      10,
			RateBurst:      5,
		},
		Storage: StorageConfig{
			Dir:            defaultStorageDir,
			Filename:       "session.db",
			QueryTimeout:   5 * time.Second,
			DirPermissions: 0700,
		},
		Auth: AuthConfig{
			ExpiryCheckInterval: 5 * time.Minute,
		},
		Search: SearchConfig{
			PageSize:        12,
			ScrollThreshold: 200,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// GetStoragePath returns the full path to the session database file
func (c *Config) GetStoragePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.Filename)
}

// GetQueryTimeout returns the storage query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Storage.QueryTimeout
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// API configuration
	if base := os.Getenv("MKT_API_URL"); base != "" {
		c.API.BaseURL = base
	}
	if timeout := os.Getenv("MKT_API_TIMEOUT"); timeout != "" {
		c.API.Timeout = ParseDurationWithFallback(timeout, c.API.Timeout)
	}
	if retries := os.Getenv("MKT_API_MAX_RETRIES"); retries != "" {
		c.API.MaxRetries = ParseIntWithFallback(retries, c.API.MaxRetries)
	}
	if delay := os.Getenv("MKT_API_RETRY_DELAY"); delay != "" {
		c.API.RetryBaseDelay = ParseDurationWithFallback(delay, c.API.RetryBaseDelay)
	}
	if limit := os.Getenv("MKT_API_RATE_LIMIT"); limit != "" {
		if f, err := strconv.ParseFloat(limit, 64); err == nil {
			c.API.RateLimit = f
		}
	}
	if burst := os.Getenv("MKT_API_RATE_BURST"); burst != "" {
		c.API.RateBurst = ParseIntWithFallback(burst, c.API.RateBurst)
	}

	// Storage configuration
	if dir := os.Getenv("MKT_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("MKT_STORAGE_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}
	if timeout := os.Getenv("MKT_STORAGE_QUERY_TIMEOUT"); timeout != "" {
		c.Storage.QueryTimeout = ParseDurationWithFallback(timeout, c.Storage.QueryTimeout)
	}
	if perms := os.Getenv("MKT_STORAGE_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Auth configuration
	if interval := os.Getenv("MKT_AUTH_EXPIRY_CHECK_INTERVAL"); interval != "" {
		c.Auth.ExpiryCheckInterval = ParseDurationWithFallback(interval, c.Auth.ExpiryCheckInterval)
	}

	// Search configuration
	if size := os.Getenv("MKT_SEARCH_PAGE_SIZE"); size != "" {
		c.Search.PageSize = ParseIntWithFallback(size, c.Search.PageSize)
	}
	if threshold := os.Getenv("MKT_SEARCH_SCROLL_THRESHOLD"); threshold != "" {
		c.Search.ScrollThreshold = ParseIntWithFallback(threshold, c.Search.ScrollThreshold)
	}

	// Application configuration
	if timeout := os.Getenv("MKT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("MKT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Logging configuration
	if level := os.Getenv("MKT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("MKT_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "api.base_url", Message: "API base URL cannot be empty"}
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: "api.base_url", Message: "API base URL must be an absolute http(s) URL"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "API timeout must be positive"}
	}
	if c.API.MaxRetries < 0 {
		return &ConfigError{Field: "api.max_retries", Message: "max retries cannot be negative"}
	}
	if c.API.MaxRetries > 0 && c.API.RetryBaseDelay <= 0 {
		return &ConfigError{Field: "api.retry_base_delay", Message: "retry delay must be positive when retries are enabled"}
	}
	if c.API.RateLimit < 0 {
		return &ConfigError{Field: "api.rate_limit", Message: "rate limit cannot be negative"}
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		return &ConfigError{Field: "api.rate_burst", Message: "rate burst must be at least 1"}
	}

	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if c.Storage.Filename == "" {
		return &ConfigError{Field: "storage.filename", Message: "storage filename cannot be empty"}
	}
	if c.Storage.QueryTimeout <= 0 {
		return &ConfigError{Field: "storage.query_timeout", Message: "query timeout must be positive"}
	}

	if c.Auth.ExpiryCheckInterval <= 0 {
		return &ConfigError{Field: "auth.expiry_check_interval", Message: "expiry check interval must be positive"}
	}

	if c.Search.PageSize < 1 || c.Search.PageSize > 100 {
		return &ConfigError{Field: "search.page_size", Message: "page size must be between 1 and 100"}
	}
	if c.Search.ScrollThreshold < 0 {
		return &ConfigError{Field: "search.scroll_threshold", Message: "scroll threshold cannot be negative"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the upstream service endpoints, timeouts, and server settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// OpenAI Configuration
	OpenAIAPIKey string
	OpenAIModel  string // Chat model for the assistant (default: gpt-5-mini)

	// Geocoding Configuration
	GoogleGeocodingAPIKey string

	// Biocache (occurrence search engine) Configuration
	BiocacheBaseURL   string // Web service base, e.g. https://biocache-ws.ala.org.au/ws
	BiocacheUIBaseURL string // Public search UI base used for deep links
	DatasetID         string // Data resource uid scoping every search (OZCAM: dr340)

	// Species lookup (scientific/vernacular name service) Configuration
	NameLookupBaseURL string

	// Timeouts
	SearchTimeout   time.Duration // Occurrence searches can be slow under faceted queries
	LookupTimeout   time.Duration // Name lookup and geocoding calls
	ShutdownTimeout time.Duration

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string

	// Server Configuration
	Port     string
	LogLevel string

	// Data Configuration
	DataDir    string        // Data directory for the SQLite session store
	MaxHistory int           // Maximum retained messages per chat session
	CacheTTL   time.Duration // TTL for geocoding and name-lookup caches
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-5-mini"),

		GoogleGeocodingAPIKey: getEnv("GOOGLE_GEOCODING_API_KEY", ""),

		BiocacheBaseURL:   getEnv("BIOCACHE_BASE_URL", "https://biocache-ws.ala.org.au/ws"),
		BiocacheUIBaseURL: getEnv("BIOCACHE_UI_BASE_URL", "https://biocache.ala.org.au"),
		DatasetID:         getEnv("DATASET_ID", "dr340"),

		NameLookupBaseURL: getEnv("NAME_LOOKUP_BASE_URL", "https://bie-ws.ala.org.au/ws"),

		SearchTimeout:   getDurationEnv("SEARCH_TIMEOUT", 60*time.Second),
		LookupTimeout:   getDurationEnv("LOOKUP_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		Port:     getEnv("PORT", "10000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:    getEnv("DATA_DIR", getDefaultDataDir()),
		MaxHistory: getIntEnv("MAX_HISTORY", 20),
		CacheTTL:   getDurationEnv("CACHE_TTL", 24*time.Hour),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.BiocacheBaseURL == "" {
		errs = append(errs, errors.New("BIOCACHE_BASE_URL is required"))
	}
	if c.BiocacheUIBaseURL == "" {
		errs = append(errs, errors.New("BIOCACHE_UI_BASE_URL is required"))
	}
	if c.DatasetID == "" {
		errs = append(errs, errors.New("DATASET_ID is required"))
	}
	if c.NameLookupBaseURL == "" {
		errs = append(errs, errors.New("NAME_LOOKUP_BASE_URL is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.SearchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_TIMEOUT must be positive, got %v", c.SearchTimeout))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %v", c.LookupTimeout))
	}
	if c.MaxHistory < 2 {
		errs = append(errs, fmt.Errorf("MAX_HISTORY must be at least 2, got %d", c.MaxHistory))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasAssistant returns true if the conversational assistant is configured.
func (c *Config) HasAssistant() bool {
	return c.OpenAIAPIKey != ""
}

// HasGeocoding returns true if the geocoding provider is configured.
func (c *Config) HasGeocoding() bool {
	return c.GoogleGeocodingAPIKey != ""
}

// SQLitePath returns the full path to the SQLite session database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

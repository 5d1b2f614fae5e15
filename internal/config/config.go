// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	// DBPath is a SQLite file path, or ":memory:" for a process-lifetime database.
	DBPath string
	// CatalogPath overrides the embedded catalog when set.
	CatalogPath        string
	HealthCheckTimeout time.Duration
	// Debug lowers the log level to debug.
	Debug     bool
	Workspace WorkspaceConfig
	Visual    VisualConfig
	DBRetry   RetryConfig
}

// WorkspaceConfig controls the per-tab workspace lifecycle.
type WorkspaceConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// VisualConfig controls the visualizer.
type VisualConfig struct {
	AnimationDelay time.Duration
	Capacity       int
}

// RetryConfig controls retries of conflicting database writes.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", ""),
		DBPath:             getEnv("DB_PATH", ":memory:"),
		CatalogPath:        getEnv("CATALOG_PATH", ""),
		HealthCheckTimeout: getEnvDuration("HEALTH_CHECK_TIMEOUT", 2*time.Second),
		Debug:              getEnvBool("DEBUG", false),
		Workspace: WorkspaceConfig{
			TTL:           getEnvDuration("WORKSPACE_TTL", 60*time.Minute),
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		},
		Visual: VisualConfig{
			AnimationDelay: getEnvDuration("ANIMATION_DELAY", time.Second),
			Capacity:       getEnvInt("VISUAL_CAPACITY", 8),
		},
		DBRetry: RetryConfig{
			MaxAttempts: getEnvInt("DB_MAX_RETRIES", 3),
			BaseDelay:   getEnvDuration("DB_RETRY_BASE_DELAY", 50*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be > 0")
	}
	if c.Workspace.TTL <= 0 {
		return fmt.Errorf("WORKSPACE_TTL must be > 0")
	}
	if c.Workspace.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.Visual.AnimationDelay < 0 {
		return fmt.Errorf("ANIMATION_DELAY cannot be negative")
	}
	if c.Visual.Capacity <= 0 {
		return fmt.Errorf("VISUAL_CAPACITY must be > 0")
	}
	if c.DBRetry.MaxAttempts <= 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be > 0")
	}
	if c.DBRetry.BaseDelay < 0 {
		return fmt.Errorf("DB_RETRY_BASE_DELAY cannot be negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins lists the CORS origins for the configured frontend.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:5173", "http://localhost:" + c.Port}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "FRONTEND_URL", "DB_PATH", "WORKSPACE_TTL", "SWEEP_INTERVAL",
		"ANIMATION_DELAY", "VISUAL_CAPACITY", "DEBUG", "DB_MAX_RETRIES", "HEALTH_CHECK_TIMEOUT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBPath != ":memory:" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Workspace.TTL != time.Hour {
		t.Errorf("Workspace.TTL = %v", cfg.Workspace.TTL)
	}
	if cfg.Visual.AnimationDelay != time.Second || cfg.Visual.Capacity != 8 {
		t.Errorf("Visual = %+v", cfg.Visual)
	}
	if cfg.Debug {
		t.Error("Debug should be false")
	}
	if !cfg.IsDevelopment() {
		t.Error("empty FRONTEND_URL should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "DB_PATH", "DB_MAX_RETRIES", "HEALTH_CHECK_TIMEOUT")
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "https://dslabs.example")
	t.Setenv("WORKSPACE_TTL", "15m")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("ANIMATION_DELAY", "250ms")
	t.Setenv("VISUAL_CAPACITY", "12")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9090" || cfg.Workspace.TTL != 15*time.Minute || cfg.Workspace.SweepInterval != 30*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Visual.AnimationDelay != 250*time.Millisecond || cfg.Visual.Capacity != 12 {
		t.Errorf("Visual = %+v", cfg.Visual)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.IsDevelopment() {
		t.Error("public FRONTEND_URL should not be development")
	}

	origins := cfg.AllowedOrigins()
	if origins[len(origins)-1] != "https://dslabs.example" {
		t.Errorf("AllowedOrigins() = %v", origins)
	}
}

func TestLoadMalformedFallsBack(t *testing.T) {
	unsetEnv(t, "PORT", "DB_PATH", "SWEEP_INTERVAL", "DB_MAX_RETRIES", "HEALTH_CHECK_TIMEOUT")
	t.Setenv("WORKSPACE_TTL", "soon")
	t.Setenv("VISUAL_CAPACITY", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workspace.TTL != 60*time.Minute || cfg.Visual.Capacity != 8 {
		t.Errorf("fallbacks not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port: "8080", DBPath: ":memory:", HealthCheckTimeout: time.Second,
			Workspace: WorkspaceConfig{TTL: time.Hour, SweepInterval: time.Minute},
			Visual:    VisualConfig{AnimationDelay: time.Second, Capacity: 8},
			DBRetry:   RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(*Config){
		"empty port":        func(c *Config) { c.Port = "" },
		"empty db path":     func(c *Config) { c.DBPath = "" },
		"zero ttl":          func(c *Config) { c.Workspace.TTL = 0 },
		"zero sweep":        func(c *Config) { c.Workspace.SweepInterval = 0 },
		"negative delay":    func(c *Config) { c.Visual.AnimationDelay = -time.Second },
		"zero capacity":     func(c *Config) { c.Visual.Capacity = 0 },
		"zero retries":      func(c *Config) { c.DBRetry.MaxAttempts = 0 },
		"zero health check": func(c *Config) { c.HealthCheckTimeout = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

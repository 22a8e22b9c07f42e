package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Address(); got != "127.0.0.1:3000" {
		t.Errorf("Address: got %q, want 127.0.0.1:3000", got)
	}
	if cfg.Environment != "development" || !cfg.IsDevelopment() {
		t.Errorf("Environment: got %q, want development", cfg.Environment)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("MetricsPort: got %d, want 9090", cfg.MetricsPort)
	}
	if cfg.HealthPort != 9091 {
		t.Errorf("HealthPort: got %d, want 9091", cfg.HealthPort)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("logging: got %s/%s, want info/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.EnableTracing {
		t.Errorf("EnableTracing: got true, want false")
	}
	if !cfg.EnableMetrics || !cfg.EnableHealthCheck {
		t.Errorf("metrics/health: got %v/%v, want true/true", cfg.EnableMetrics, cfg.EnableHealthCheck)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout: got %s, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("MAX_BODY_SIZE", "64K")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.IsProduction() {
		t.Errorf("IsProduction: got false")
	}
	if got := cfg.GetServerConfig(); got.Address != "0.0.0.0:8080" || got.RequestTimeout != 5*time.Second || got.MaxBodySize != "64K" {
		t.Errorf("server config: got %+v", got)
	}
	if got := cfg.GetObservabilityConfig(); got.LogLevel != "debug" || got.LogFormat != "console" || !got.EnableTracing {
		t.Errorf("observability config: got %+v", got)
	}
}

func TestReflectionEnabled(t *testing.T) {
	cases := []struct {
		environment string
		flag        bool
		want        bool
	}{
		{"development", false, true},
		{"dev", false, true},
		{"staging", false, false},
		{"production", false, false},
		{"production", true, true},
	}

	for _, tc := range cases {
		cfg := &Config{Environment: tc.environment, EnableReflection: tc.flag}
		if got := cfg.ReflectionEnabled(); got != tc.want {
			t.Errorf("%s (flag %v): got %v, want %v", tc.environment, tc.flag, got, tc.want)
		}
	}
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("ENABLE_METRICS", "maybe")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port: got %d, want 3000", cfg.Port)
	}
	if !cfg.EnableMetrics {
		t.Errorf("EnableMetrics: got false, want true")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout: got %s, want 30s", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Host:                "127.0.0.1",
			Port:                3000,
			MetricsPort:         9090,
			HealthPort:          9091,
			MaxBodySize:         "4M",
			RequestTimeout:      time.Second,
			ShutdownTimeout:     time.Second,
			PrometheusNamespace: "todo_api",
			LogLevel:            "info",
			LogFormat:           "json",
			EnableMetrics:       true,
			EnableHealthCheck:   true,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(c *Config){
		"port out of range":      func(c *Config) { c.Port = 70000 },
		"metrics port collision": func(c *Config) { c.MetricsPort = c.Port },
		"health port collision":  func(c *Config) { c.HealthPort = c.MetricsPort },
		"bad body size":          func(c *Config) { c.MaxBodySize = "lots" },
		"zero request timeout":   func(c *Config) { c.RequestTimeout = 0 },
		"zero shutdown timeout":  func(c *Config) { c.ShutdownTimeout = 0 },
		"empty namespace":        func(c *Config) { c.PrometheusNamespace = "" },
		"unknown log level":      func(c *Config) { c.LogLevel = "trace" },
		"unknown log format":     func(c *Config) { c.LogFormat = "xml" },
		"tracing without endpoint": func(c *Config) {
			c.EnableTracing = true
			c.OTLPEndpoint = ""
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}

	t.Run("disabled metrics port is not checked", func(t *testing.T) {
		cfg := valid()
		cfg.EnableMetrics = false
		cfg.MetricsPort = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// isolateEnv runs the test in an empty directory so no .env is picked up and
// blanks every variable Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		"ENVIRONMENT", "HOST", "PORT", "METRICS_PORT", "HEALTH_PORT",
		"MAX_BODY_SIZE", "REQUEST_TIMEOUT", "OTLP_ENDPOINT", "PROMETHEUS_NAMESPACE",
		"LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT", "ENABLE_METRICS",
		"ENABLE_TRACING", "ENABLE_HEALTH_CHECK", "ENABLE_REFLECTION",
	} {
		t.Setenv(key, "")
	}
}

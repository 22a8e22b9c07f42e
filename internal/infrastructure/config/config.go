package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
)

type Config struct {
	// Server configuration
	Environment string
	Host        string
	Port        int
	MetricsPort int
	HealthPort  int

	// Request handling
	MaxBodySize    string
	RequestTimeout time.Duration

	// Observability
	OTLPEndpoint        string
	PrometheusNamespace string
	LogLevel            string
	LogFormat           string // json or console

	// Graceful Shutdown
	ShutdownTimeout time.Duration

	// Feature Flags
	EnableMetrics     bool
	EnableTracing     bool
	EnableHealthCheck bool
	EnableReflection  bool
}

func Load() (*Config, error) {
	// Load .env file if exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		Host:        getEnv("HOST", "127.0.0.1"),
		Port:        getEnvAsInt("PORT", 3000),
		MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		HealthPort:  getEnvAsInt("HEALTH_PORT", 9091),

		// Requests
		MaxBodySize:    getEnv("MAX_BODY_SIZE", "4M"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),

		// Observability
		OTLPEndpoint:        getEnv("OTLP_ENDPOINT", "localhost:4317"),
		PrometheusNamespace: getEnv("PROMETHEUS_NAMESPACE", "todo_api"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),

		// Graceful Shutdown
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Feature Flags
		EnableMetrics:     getEnvAsBool("ENABLE_METRICS", true),
		EnableTracing:     getEnvAsBool("ENABLE_TRACING", false),
		EnableHealthCheck: getEnvAsBool("ENABLE_HEALTH_CHECK", true),
		EnableReflection:  getEnvAsBool("ENABLE_REFLECTION", false),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// Port validation
	ports := map[string]int{"port": c.Port}
	if c.EnableMetrics {
		ports["metrics port"] = c.MetricsPort
	}
	if c.EnableHealthCheck {
		ports["health port"] = c.HealthPort
	}

	used := make(map[int]string, len(ports))
	for name, port := range ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: %d", name, port)
		}
		if other, ok := used[port]; ok {
			return fmt.Errorf("%s and %s both use %d", other, name, port)
		}
		used[port] = name
	}

	if _, err := bytes.Parse(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max body size %q: %w", c.MaxBodySize, err)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	if c.PrometheusNamespace == "" {
		return fmt.Errorf("PROMETHEUS_NAMESPACE cannot be empty")
	}

	if c.EnableTracing && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP_ENDPOINT is required when tracing is enabled")
	}

	// Log level validation
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	// Log format validation
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.LogFormat)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// ReflectionEnabled reports whether gRPC reflection is served.
func (c *Config) ReflectionEnabled() bool {
	return c.EnableReflection || c.IsDevelopment()
}

// Address is the host:port the HTTP API listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

type ServerConfig struct {
	Address         string
	MaxBodySize     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:         c.Address(),
		MaxBodySize:     c.MaxBodySize,
		RequestTimeout:  c.RequestTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

type ObservabilityConfig struct {
	EnableMetrics       bool
	EnableTracing       bool
	OTLPEndpoint        string
	PrometheusNamespace string
	LogLevel            string
	LogFormat           string
}

func (c *Config) GetObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		EnableMetrics:       c.EnableMetrics,
		EnableTracing:       c.EnableTracing,
		OTLPEndpoint:        c.OTLPEndpoint,
		PrometheusNamespace: c.PrometheusNamespace,
		LogLevel:            c.LogLevel,
		LogFormat:           c.LogFormat,
	}
}

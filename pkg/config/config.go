package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reelworks/reelit/pkg/products"
	"github.com/reelworks/reelit/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database storage.Config `yaml:"database"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Catalog holds the static product catalog; empty means no commerce
	// backend and product endpoints answer unavailable.
	Catalog []products.Product `yaml:"catalog"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration. The timeout fields take Go
// duration strings in YAML ("15s", "1m30s").
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AdminToken guards the admin API. Empty disables the admin surface;
	// the public track endpoint stays open either way.
	AdminToken string `yaml:"admin_token"`

	// CORSAllowedOrigins enables CORS for browser clients on other origins;
	// empty leaves CORS headers off. "*" allows any origin.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// UnmarshalYAML accepts duration strings for the timeout fields, which the
// yaml package cannot decode into time.Duration on its own. Absent keys keep
// the values already present, so defaults survive partial files.
func (s *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Host               string   `yaml:"host"`
		Port               string   `yaml:"port"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		IdleTimeout        string   `yaml:"idle_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
		AdminToken         string   `yaml:"admin_token"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Host != "" {
		s.Host = raw.Host
	}
	if raw.Port != "" {
		s.Port = raw.Port
	}
	if raw.AdminToken != "" {
		s.AdminToken = raw.AdminToken
	}
	if len(raw.CORSAllowedOrigins) > 0 {
		s.CORSAllowedOrigins = raw.CORSAllowedOrigins
	}

	durations := []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{raw.ReadTimeout, &s.ReadTimeout, "read_timeout"},
		{raw.WriteTimeout, &s.WriteTimeout, "write_timeout"},
		{raw.IdleTimeout, &s.IdleTimeout, "idle_timeout"},
		{raw.ShutdownTimeout, &s.ShutdownTimeout, "shutdown_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse server %s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

// CacheConfig selects the feed-list cache backend
type CacheConfig struct {
	// Backend is "redis", "memory" or "none".
	Backend string `yaml:"backend"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// MemorySize bounds the in-process cache entry count.
	MemorySize int `yaml:"memory_size"`

	// WarmSchedule is a cron expression for periodic cache warming; empty
	// disables it.
	WarmSchedule string `yaml:"warm_schedule"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "text"

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"` // Use insecure gRPC connection
}

// Default returns the built-in configuration: local SQLite, in-process
// cache, metrics on, tracing off.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: storage.DefaultConfig(),
		Cache: CacheConfig{
			Backend:    "memory",
			MemorySize: 128,
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			LogFormat:          "json",
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "reelit",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// Load builds the configuration in three layers: defaults, then the YAML
// file at path (skipped when path is empty), then REELIT_* environment
// overrides. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays REELIT_* environment variables
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("REELIT_HOST", c.Server.Host)
	c.Server.Port = getEnv("REELIT_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("REELIT_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("REELIT_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("REELIT_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("REELIT_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.AdminToken = getEnv("REELIT_ADMIN_TOKEN", c.Server.AdminToken)
	if origins := os.Getenv("REELIT_CORS_ORIGINS"); origins != "" {
		c.Server.CORSAllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSAllowedOrigins = append(c.Server.CORSAllowedOrigins, o)
			}
		}
	}

	c.Database.Driver = getEnv("REELIT_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("REELIT_DB_DSN", c.Database.DSN)
	c.Database.MaxOpenConns = getEnvInt("REELIT_DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("REELIT_DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvDuration("REELIT_DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)
	c.Database.ConnectTimeout = getEnvDuration("REELIT_DB_CONNECT_TIMEOUT", c.Database.ConnectTimeout)

	c.Cache.Backend = getEnv("REELIT_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REELIT_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("REELIT_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REELIT_REDIS_DB", c.Cache.RedisDB)
	c.Cache.MemorySize = getEnvInt("REELIT_CACHE_MEMORY_SIZE", c.Cache.MemorySize)
	c.Cache.WarmSchedule = getEnv("REELIT_CACHE_WARM_SCHEDULE", c.Cache.WarmSchedule)

	c.Observability.LogLevel = getEnv("REELIT_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("REELIT_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsEnabled = getEnvBool("REELIT_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("REELIT_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("REELIT_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("REELIT_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("REELIT_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("REELIT_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for sqlite3")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite3 or postgres)", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis cache backend")
		}
	case "memory", "none":
	default:
		return fmt.Errorf("invalid cache backend: %s (must be redis, memory, or none)", c.Cache.Backend)
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Observability.LogLevel)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

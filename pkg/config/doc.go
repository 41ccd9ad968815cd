// Package config provides application configuration management from a YAML
// file and environment variables.
//
// # Overview
//
// Configuration is layered: built-in defaults, then the YAML file passed to
// Load, then REELIT_* environment overrides. The merged result is validated
// before use.
//
// # Configuration Structure
//
// Server settings:
//
//	REELIT_HOST="0.0.0.0"
//	REELIT_PORT="8080"
//	REELIT_READ_TIMEOUT="15s"
//	REELIT_WRITE_TIMEOUT="15s"
//	REELIT_ADMIN_TOKEN="..."
//
// Database settings:
//
//	REELIT_DB_DRIVER="postgres"  # sqlite3, postgres
//	REELIT_DB_DSN="postgres://localhost/reelit"
//	REELIT_DB_MAX_OPEN_CONNS="20"
//
// Cache settings:
//
//	REELIT_CACHE_BACKEND="redis"  # redis, memory, none
//	REELIT_REDIS_ADDR="localhost:6379"
//	REELIT_CACHE_WARM_SCHEDULE="@every 30m"
//
// Observability settings:
//
//	REELIT_LOG_LEVEL="info"  # debug, info, warn, error
//	REELIT_METRICS_ENABLED="true"
//	REELIT_OTEL_ENABLED="true"
//	REELIT_OTEL_ENDPOINT="otel-collector:4317"
//
// The static product catalog has no environment form; it is YAML-only:
//
//	catalog:
//	  - id: 1
//	    name: Surfboard
//	    price: 499.99
//	    permalink: https://shop.example.com/surfboard
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/reelit/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Database: %s\n", cfg.Database.Driver)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage: Uses database configuration
//   - pkg/observability: Uses observability configuration
package config

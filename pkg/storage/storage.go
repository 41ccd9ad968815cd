package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"gopkg.in/yaml.v3"
)

// Config for the database backend.
type Config struct {
	// Driver is "sqlite3" or "postgres".
	Driver string `yaml:"driver"`
	// DSN is the driver-specific connection string. For sqlite3 this is a
	// file path or ":memory:".
	DSN string `yaml:"dsn"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// UnmarshalYAML accepts duration strings ("30m", "10s") for the lifetime and
// timeout fields. Absent keys keep the values already present.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		ConnectTimeout  string `yaml:"connect_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Driver != "" {
		c.Driver = raw.Driver
	}
	if raw.DSN != "" {
		c.DSN = raw.DSN
	}
	if raw.MaxOpenConns != 0 {
		c.MaxOpenConns = raw.MaxOpenConns
	}
	if raw.MaxIdleConns != 0 {
		c.MaxIdleConns = raw.MaxIdleConns
	}
	if raw.ConnMaxLifetime != "" {
		parsed, err := time.ParseDuration(raw.ConnMaxLifetime)
		if err != nil {
			return fmt.Errorf("parse database conn_max_lifetime: %w", err)
		}
		c.ConnMaxLifetime = parsed
	}
	if raw.ConnectTimeout != "" {
		parsed, err := time.ParseDuration(raw.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("parse database connect_timeout: %w", err)
		}
		c.ConnectTimeout = parsed
	}
	return nil
}

// DefaultConfig returns a local SQLite configuration.
func DefaultConfig() Config {
	return Config{
		Driver:          "sqlite3",
		DSN:             "reelit.db",
		MaxOpenConns:    20,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// Open connects to the configured database and verifies the connection.
func Open(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite3" {
		// Cascading deletes on feed_videos and asset_products depend on this.
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	return db, nil
}

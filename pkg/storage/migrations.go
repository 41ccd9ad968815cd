package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqliteSchema and postgresSchema describe the same five tables; they differ
// only in the auto-increment primary key syntax and timestamp defaults.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		thumbnail_alt TEXT NOT NULL DEFAULT '',
		mime TEXT NOT NULL DEFAULT '',
		author_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'ready',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS feeds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS feed_videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		video_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_videos_feed_id ON feed_videos (feed_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_videos_video_id ON feed_videos (video_id)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id INTEGER NOT NULL,
		feed_id INTEGER,
		event_type TEXT NOT NULL,
		watch_time INTEGER NOT NULL DEFAULT 0,
		product_id INTEGER,
		session_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_video_id ON analytics_events (video_id)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_event_type ON analytics_events (event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_created_at ON analytics_events (created_at)`,
	`CREATE TABLE IF NOT EXISTS asset_products (
		asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (asset_id, product_id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		thumbnail_alt TEXT NOT NULL DEFAULT '',
		mime TEXT NOT NULL DEFAULT '',
		author_id BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'ready',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS feeds (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS feed_videos (
		id BIGSERIAL PRIMARY KEY,
		feed_id BIGINT NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		video_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_videos_feed_id ON feed_videos (feed_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_videos_video_id ON feed_videos (video_id)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id BIGSERIAL PRIMARY KEY,
		video_id BIGINT NOT NULL,
		feed_id BIGINT,
		event_type TEXT NOT NULL,
		watch_time INTEGER NOT NULL DEFAULT 0,
		product_id BIGINT,
		session_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_video_id ON analytics_events (video_id)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_event_type ON analytics_events (event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_created_at ON analytics_events (created_at)`,
	`CREATE TABLE IF NOT EXISTS asset_products (
		asset_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (asset_id, product_id)
	)`,
}

// Migrate creates the schema for the connected backend if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch db.DriverName() {
	case "sqlite3":
		stmts = sqliteSchema
	case "postgres":
		stmts = postgresSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

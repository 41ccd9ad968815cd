// Package storage opens and migrates the relational database backing the
// gallery service.
//
// Two backends are supported:
//
//   - SQLite (driver "sqlite3"): single-node deployments and tests. The
//     in-memory DSN ":memory:" is used throughout the test suites.
//   - PostgreSQL (driver "postgres"): production deployments.
//
// Open returns an *sqlx.DB so callers can use Rebind to write queries once
// with "?" placeholders and run them against either dialect.
//
// Migrate applies the schema idempotently (CREATE TABLE IF NOT EXISTS); there
// is no migration versioning because the schema is small and additive. Five
// tables are managed:
//
//	feeds             admin-curated video galleries
//	feed_videos       ordered feed membership (no uniqueness on
//	                  (feed_id, video_id); duplicates are allowed by design)
//	analytics_events  append-only engagement log
//	assets            the video asset library (written by the upload pipeline,
//	                  read through pkg/assets)
//	asset_products    per-asset linked commerce products
package storage

// Package assets exposes the video asset library to the rest of the service.
//
// The asset store is the system of record for uploaded videos and their
// metadata (title, playback URL, thumbnail, MIME type). Everything else in
// the service addresses videos by opaque numeric id and resolves metadata
// through the Store interface, which keeps the gallery, feed, and analytics
// layers decoupled from where assets actually live.
//
// Library is the SQL implementation over the assets table. Its Search method
// backs the admin gallery picker: paginated, title-searchable, optionally
// author-scoped, and always returning fully hydrated records. When
// SearchOptions.Fields is "ids" the initial query selects ids only and the
// records are hydrated in a second batched fetch; this is a query-plan
// optimization, not a contract change.
package assets

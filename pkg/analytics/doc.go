// Package analytics records viewer engagement events and aggregates them
// into dashboard statistics.
//
// # Overview
//
// Two components share the append-only analytics_events table:
//
//   - EventStore validates and writes raw events (play, complete,
//     product_click). Rows are immutable; there is no update or delete path.
//   - Service computes windowed aggregates (summary KPIs, top videos, daily
//     time series) live at read time. Nothing is pre-aggregated, so reads
//     are always consistent with the last write and derived numbers can
//     never drift from the raw rows.
//
// # Key Metrics
//
// Summary KPIs over a trailing window:
//   - Total plays, completions and product clicks
//   - Average watch time (seconds, over completed views)
//   - Unique visitors (distinct session ids)
//   - Completion rate (percent of plays that completed)
//
// Per-video:
//   - Plays, completions, clicks, average watch time, completion rate
//   - Title resolved from the asset store, with a placeholder when the
//     backing asset has been deleted
//
// # Usage Example
//
// Record an event:
//
//	store := analytics.NewEventStore(db, library)
//	id, err := store.Record(ctx, analytics.Event{
//		VideoID:   42,
//		Type:      analytics.EventPlay,
//		SessionID: "b6f3cdd2",
//	})
//
// Query aggregates:
//
//	svc := analytics.NewService(db, library)
//	stats, err := svc.GetSummaryStats(ctx, 30)
package analytics

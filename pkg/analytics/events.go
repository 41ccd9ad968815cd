package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Event types accepted by the tracker.
const (
	EventPlay         = "play"
	EventComplete     = "complete"
	EventProductClick = "product_click"
)

var (
	// ErrInvalidEventType rejects types outside the known whitelist.
	ErrInvalidEventType = errors.New("invalid event type")
	// ErrMissingSession rejects events without a session id.
	ErrMissingSession = errors.New("session id is required")
	// ErrUnknownVideo rejects events for videos the asset store does not know.
	ErrUnknownVideo = errors.New("unknown video")
)

// Event is one viewer interaction as reported by the player. FeedID and
// ProductID are optional context; WatchTime is seconds and only meaningful
// for complete events.
type Event struct {
	VideoID   int64  `json:"video_id"`
	FeedID    *int64 `json:"feed_id,omitempty"`
	Type      string `json:"event_type"`
	WatchTime int    `json:"watch_time"`
	ProductID *int64 `json:"product_id,omitempty"`
	SessionID string `json:"session_id"`
}

// VideoChecker confirms a video exists before an event is accepted. The
// assets Library satisfies it.
type VideoChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// EventStore validates and appends engagement events.
type EventStore struct {
	db     *sqlx.DB
	videos VideoChecker
}

// NewEventStore creates an EventStore backed by db, checking video ids
// against videos.
func NewEventStore(db *sqlx.DB, videos VideoChecker) *EventStore {
	return &EventStore{db: db, videos: videos}
}

// Record validates and inserts one event, returning the new row id. The
// endpoint serving this is public, so validation here is complete on its
// own: unknown types, empty sessions and unknown videos are all rejected
// before any write. Negative watch times are clamped to zero and
// non-positive FeedID/ProductID values are stored as NULL.
func (s *EventStore) Record(ctx context.Context, event Event) (int64, error) {
	switch event.Type {
	case EventPlay, EventComplete, EventProductClick:
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEventType, event.Type)
	}
	if event.SessionID == "" {
		return 0, ErrMissingSession
	}
	if event.VideoID <= 0 {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownVideo, event.VideoID)
	}
	exists, err := s.videos.Exists(ctx, event.VideoID)
	if err != nil {
		return 0, fmt.Errorf("check video %d: %w", event.VideoID, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownVideo, event.VideoID)
	}

	if event.WatchTime < 0 {
		event.WatchTime = 0
	}
	if event.FeedID != nil && *event.FeedID <= 0 {
		event.FeedID = nil
	}
	if event.ProductID != nil && *event.ProductID <= 0 {
		event.ProductID = nil
	}

	id, err := s.insertReturningID(ctx,
		`INSERT INTO analytics_events (video_id, feed_id, event_type, watch_time, product_id, session_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.VideoID, event.FeedID, event.Type, event.WatchTime, event.ProductID,
		event.SessionID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("record %s event: %w", event.Type, err)
	}
	return id, nil
}

func (s *EventStore) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.db.DriverName() == "postgres" {
		var id int64
		err := s.db.GetContext(ctx, &id, s.db.Rebind(query+" RETURNING id"), args...)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

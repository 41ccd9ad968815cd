package feeds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/reelworks/reelit/pkg/assets"
)

var (
	// ErrEmptyName rejects a feed with no name before any write.
	ErrEmptyName = errors.New("feed name must not be empty")
	// ErrDuplicateName is the unique-constraint loss on feed name.
	ErrDuplicateName = errors.New("a feed with this name already exists")
	// ErrNotFound is returned by single-feed reads for missing ids.
	ErrNotFound = errors.New("feed not found")
)

// feedListKey is the single cache key for the feeds-with-thumbnails view.
const feedListKey = "feeds:list:summaries"

// FeedListTTL bounds staleness when an invalidation is lost (process crash
// between write and delete). Mutations invalidate proactively, so the TTL is
// a backstop, not the freshness mechanism.
const FeedListTTL = time.Hour

// ThumbnailSource resolves derived thumbnail data for a video asset.
type ThumbnailSource interface {
	ThumbnailData(ctx context.Context, id int64, fallbackAlt string) (assets.Thumbnail, error)
}

// Repository owns feeds and their video memberships.
type Repository struct {
	db     *sqlx.DB
	cache  Cache
	thumbs ThumbnailSource
}

// NewRepository creates a Repository. cache may be NopCache{}; thumbs is
// normally the assets Library.
func NewRepository(db *sqlx.DB, cache Cache, thumbs ThumbnailSource) *Repository {
	if cache == nil {
		cache = NopCache{}
	}
	return &Repository{db: db, cache: cache, thumbs: thumbs}
}

// CreateFeed inserts a feed and returns its id. A name collision returns
// ErrDuplicateName; two concurrent creates with the same name race at the
// database constraint and the loser fails cleanly.
func (r *Repository) CreateFeed(ctx context.Context, name, description string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	now := time.Now().UTC()
	id, err := r.insertReturningID(ctx,
		`INSERT INTO feeds (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, description, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("create feed: %w", err)
	}

	r.invalidate(ctx)
	return id, nil
}

// UpdateFeed replaces a feed's mutable fields and touches updated_at. It
// returns false with a nil error when no row matched the id, so callers can
// distinguish a no-op from a failure.
func (r *Repository) UpdateFeed(ctx context.Context, id int64, name, description string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}

	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE feeds SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		name, description, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicateName
		}
		return false, fmt.Errorf("update feed %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update feed %d: %w", id, err)
	}

	r.invalidate(ctx)
	return affected > 0, nil
}

// DeleteFeed removes a feed and all of its memberships. Deleting a feed that
// does not exist is a no-op success.
func (r *Repository) DeleteFeed(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete feed %d: %w", id, err)
	}
	defer tx.Rollback()

	// Memberships first: explicit even with ON DELETE CASCADE so the delete
	// behaves the same on backends where the cascade is not enforced.
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM feed_videos WHERE feed_id = ?`), id); err != nil {
		return fmt.Errorf("delete feed %d memberships: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM feeds WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete feed %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete feed %d: %w", id, err)
	}

	r.invalidate(ctx)
	return nil
}

// GetFeed returns one feed or ErrNotFound.
func (r *Repository) GetFeed(ctx context.Context, id int64) (*Feed, error) {
	var f Feed
	err := r.db.GetContext(ctx, &f, r.db.Rebind(`SELECT * FROM feeds WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}
	return &f, nil
}

// CountFeeds returns the number of feeds. Used by the metrics endpoint to
// keep the feed gauge current at scrape time.
func (r *Repository) CountFeeds(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM feeds`); err != nil {
		return 0, fmt.Errorf("count feeds: %w", err)
	}
	return n, nil
}

// GetFeeds returns all feeds ordered by name. Cheap enough to stay uncached.
func (r *Repository) GetFeeds(ctx context.Context) ([]Feed, error) {
	feeds := []Feed{}
	if err := r.db.SelectContext(ctx, &feeds, `SELECT * FROM feeds ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

const feedSummaryQuery = `
	SELECT
		f.id, f.name, f.description, f.created_at, f.updated_at,
		COUNT(fv.video_id) AS video_count,
		COALESCE(MIN(fv.video_id), 0) AS first_video_id
	FROM feeds f
	LEFT JOIN feed_videos fv ON f.id = fv.feed_id
	GROUP BY f.id
	ORDER BY f.name ASC`

// GetFeedsWithThumbnails returns every feed with its membership count and a
// thumbnail derived from the lowest-id member video. The whole result is
// cached under one key; see the package comment for the invalidation policy.
func (r *Repository) GetFeedsWithThumbnails(ctx context.Context) ([]FeedSummary, error) {
	if data, ok := r.cache.Get(ctx, feedListKey); ok {
		var cached []FeedSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Unreadable entry: drop it and fall through to the database.
		r.cache.Delete(ctx, feedListKey)
	}

	summaries, err := r.computeSummaries(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summaries); err == nil {
		r.cache.Set(ctx, feedListKey, data, FeedListTTL)
	}
	return summaries, nil
}

// WarmCache recomputes the feed-list view and repopulates the cache. Safe to
// run on a schedule: the view is derived data and can be rebuilt at any time.
func (r *Repository) WarmCache(ctx context.Context) error {
	summaries, err := r.computeSummaries(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("marshal feed summaries: %w", err)
	}
	r.cache.Set(ctx, feedListKey, data, FeedListTTL)
	return nil
}

func (r *Repository) computeSummaries(ctx context.Context) ([]FeedSummary, error) {
	summaries := []FeedSummary{}
	if err := r.db.SelectContext(ctx, &summaries, feedSummaryQuery); err != nil {
		return nil, fmt.Errorf("list feed summaries: %w", err)
	}

	for i := range summaries {
		s := &summaries[i]
		if s.FirstVideoID == 0 {
			continue
		}
		thumb, err := r.thumbs.ThumbnailData(ctx, s.FirstVideoID, "Thumbnail for "+s.Name)
		if err != nil {
			logrus.WithError(err).WithField("feed_id", s.ID).Warn("feed thumbnail lookup failed")
			continue
		}
		s.ThumbnailURL = thumb.URL
		s.ThumbnailAlt = thumb.Alt
	}
	return summaries, nil
}

// GetFeedThumbnailData refreshes one dashboard card without touching the
// cached list. Returns ErrNotFound for a missing feed.
func (r *Repository) GetFeedThumbnailData(ctx context.Context, feedID int64) (*FeedThumbnail, error) {
	var row struct {
		ID           int64  `db:"id"`
		Name         string `db:"name"`
		VideoCount   int64  `db:"video_count"`
		FirstVideoID int64  `db:"first_video_id"`
	}
	query := `
		SELECT
			f.id, f.name,
			COUNT(fv.video_id) AS video_count,
			COALESCE(MIN(fv.video_id), 0) AS first_video_id
		FROM feeds f
		LEFT JOIN feed_videos fv ON f.id = fv.feed_id
		WHERE f.id = ?
		GROUP BY f.id`
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), feedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("feed %d thumbnail: %w", feedID, err)
	}

	result := &FeedThumbnail{
		FeedID:     feedID,
		VideoCount: row.VideoCount,
		HasVideos:  row.VideoCount > 0,
	}
	if row.FirstVideoID > 0 {
		thumb, err := r.thumbs.ThumbnailData(ctx, row.FirstVideoID, "Thumbnail for "+row.Name)
		if err != nil {
			return nil, err
		}
		result.ThumbnailURL = thumb.URL
		result.ThumbnailAlt = thumb.Alt
	}
	return result, nil
}

// GetFeedVideos returns a feed's memberships joined with asset metadata,
// ordered by (sort_order, id). The secondary key keeps ordering
// deterministic when drag-and-drop reordering writes colliding sort_order
// values.
func (r *Repository) GetFeedVideos(ctx context.Context, feedID int64) ([]FeedVideo, error) {
	videos := []FeedVideo{}
	query := `
		SELECT fv.id, fv.feed_id, fv.video_id, fv.sort_order, fv.created_at,
			a.title, a.url, a.mime
		FROM feed_videos fv
		INNER JOIN assets a ON fv.video_id = a.id
		WHERE fv.feed_id = ?
		ORDER BY fv.sort_order ASC, fv.id ASC`
	if err := r.db.SelectContext(ctx, &videos, r.db.Rebind(query), feedID); err != nil {
		return nil, fmt.Errorf("feed %d videos: %w", feedID, err)
	}
	return videos, nil
}

// AddVideoToFeed appends a membership row and returns its id. The same video
// may be added to a feed more than once; the schema deliberately has no
// uniqueness on (feed_id, video_id).
func (r *Repository) AddVideoToFeed(ctx context.Context, feedID, videoID int64, sortOrder int) (int64, error) {
	id, err := r.insertReturningID(ctx,
		`INSERT INTO feed_videos (feed_id, video_id, sort_order, created_at) VALUES (?, ?, ?, ?)`,
		feedID, videoID, sortOrder, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("add video %d to feed %d: %w", videoID, feedID, err)
	}
	r.invalidate(ctx)
	return id, nil
}

// RemoveVideoFromFeed deletes all membership rows for (feedID, videoID) and
// reports whether any existed.
func (r *Repository) RemoveVideoFromFeed(ctx context.Context, feedID, videoID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM feed_videos WHERE feed_id = ? AND video_id = ?`), feedID, videoID)
	if err != nil {
		return false, fmt.Errorf("remove video %d from feed %d: %w", videoID, feedID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove video %d from feed %d: %w", videoID, feedID, err)
	}
	r.invalidate(ctx)
	return affected > 0, nil
}

// UpdateVideoSortOrder rewrites the sort position of one membership.
// Last-writer-wins: two admins reordering simultaneously race at the row
// level with no version token.
func (r *Repository) UpdateVideoSortOrder(ctx context.Context, feedID, videoID int64, sortOrder int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE feed_videos SET sort_order = ? WHERE feed_id = ? AND video_id = ?`),
		sortOrder, feedID, videoID)
	if err != nil {
		return false, fmt.Errorf("reorder video %d in feed %d: %w", videoID, feedID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reorder video %d in feed %d: %w", videoID, feedID, err)
	}
	r.invalidate(ctx)
	return affected > 0, nil
}

// insertReturningID handles the LastInsertId/RETURNING split between the two
// backends.
func (r *Repository) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if r.db.DriverName() == "postgres" {
		var id int64
		err := r.db.GetContext(ctx, &id, r.db.Rebind(query+" RETURNING id"), args...)
		return id, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// invalidate drops the cached feed-list view. Fire-and-forget: a concurrent
// reader observes either the pre- or post-write value, never a torn one.
func (r *Repository) invalidate(ctx context.Context) {
	r.cache.Delete(ctx, feedListKey)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

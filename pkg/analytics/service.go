package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/reelworks/reelit/pkg/assets"
)

// DeletedVideoTitle stands in for videos whose backing asset is gone. Events
// outlive assets, so dangling video ids are expected and never an error.
const DeletedVideoTitle = "Deleted Video"

// DefaultTopVideosLimit caps GetTopVideos when the caller passes no limit.
const DefaultTopVideosLimit = 10

// SummaryStats are the dashboard KPIs for one trailing window.
type SummaryStats struct {
	TotalPlays       int64   `db:"total_plays" json:"total_plays"`
	TotalCompletions int64   `db:"total_completions" json:"total_completions"`
	TotalClicks      int64   `db:"total_clicks" json:"total_clicks"`
	AvgWatchTime     float64 `db:"avg_watch_time" json:"avg_watch_time"`
	UniqueVisitors   int64   `db:"unique_visitors" json:"unique_visitors"`
	CompletionRate   float64 `json:"completion_rate"`
}

// VideoStats is one row of the top-videos leaderboard.
type VideoStats struct {
	VideoID        int64   `db:"video_id" json:"video_id"`
	Plays          int64   `db:"plays" json:"plays"`
	Completions    int64   `db:"completions" json:"completions"`
	Clicks         int64   `db:"clicks" json:"clicks"`
	AvgWatchTime   float64 `db:"avg_watch_time" json:"avg_watch_time"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completion_rate"`
}

// DailyStats is one calendar day of activity. Days without events are
// omitted from results, not zero-filled.
type DailyStats struct {
	Date        string `db:"date" json:"date"`
	Plays       int64  `db:"plays" json:"plays"`
	Completions int64  `db:"completions" json:"completions"`
	Clicks      int64  `db:"clicks" json:"clicks"`
}

// TitleResolver looks up asset titles for leaderboard rows. The assets
// Library satisfies it.
type TitleResolver interface {
	GetBatch(ctx context.Context, ids []int64) (map[int64]assets.Video, error)
}

// Service aggregates raw events into statistics. Every read recomputes from
// analytics_events; there are no rollup tables to refresh or invalidate.
type Service struct {
	db     *sqlx.DB
	titles TitleResolver
}

// NewService creates an aggregation service backed by db, resolving video
// titles through titles.
func NewService(db *sqlx.DB, titles TitleResolver) *Service {
	return &Service{db: db, titles: titles}
}

// windowStart returns the inclusive lower bound for a trailing window of
// days. A zero or negative window starts now and matches nothing.
func windowStart(days int) time.Time {
	if days < 0 {
		days = 0
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}

// round1 rounds to one decimal place, matching how the dashboard displays
// rates and durations.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// GetSummaryStats computes the KPI block for the trailing window.
func (s *Service) GetSummaryStats(ctx context.Context, days int) (*SummaryStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN event_type = 'play' THEN 1 ELSE 0 END), 0) AS total_plays,
			COALESCE(SUM(CASE WHEN event_type = 'complete' THEN 1 ELSE 0 END), 0) AS total_completions,
			COALESCE(SUM(CASE WHEN event_type = 'product_click' THEN 1 ELSE 0 END), 0) AS total_clicks,
			COALESCE(AVG(CASE WHEN event_type = 'complete' THEN watch_time END), 0) AS avg_watch_time,
			COUNT(DISTINCT session_id) AS unique_visitors
		FROM analytics_events
		WHERE created_at >= ?`

	var stats SummaryStats
	if err := s.db.GetContext(ctx, &stats, s.db.Rebind(query), windowStart(days)); err != nil {
		return nil, fmt.Errorf("summary stats: %w", err)
	}

	stats.AvgWatchTime = round1(stats.AvgWatchTime)
	if stats.TotalPlays > 0 {
		stats.CompletionRate = round1(100 * float64(stats.TotalCompletions) / float64(stats.TotalPlays))
	}
	return &stats, nil
}

// GetTopVideos returns per-video stats for the trailing window, most played
// first. Titles come from the asset store; deleted assets get a placeholder.
func (s *Service) GetTopVideos(ctx context.Context, days, limit int) ([]VideoStats, error) {
	if limit <= 0 {
		limit = DefaultTopVideosLimit
	}

	query := `
		SELECT
			video_id,
			SUM(CASE WHEN event_type = 'play' THEN 1 ELSE 0 END) AS plays,
			SUM(CASE WHEN event_type = 'complete' THEN 1 ELSE 0 END) AS completions,
			SUM(CASE WHEN event_type = 'product_click' THEN 1 ELSE 0 END) AS clicks,
			COALESCE(AVG(CASE WHEN event_type = 'complete' THEN watch_time END), 0) AS avg_watch_time
		FROM analytics_events
		WHERE created_at >= ?
		GROUP BY video_id
		ORDER BY plays DESC
		LIMIT ?`

	rows := []VideoStats{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), windowStart(days), limit); err != nil {
		return nil, fmt.Errorf("top videos: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.VideoID)
	}
	videos, err := s.titles.GetBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve video titles: %w", err)
	}
	for i := range rows {
		r := &rows[i]
		r.AvgWatchTime = round1(r.AvgWatchTime)
		if r.Plays > 0 {
			r.CompletionRate = round1(100 * float64(r.Completions) / float64(r.Plays))
		}
		if v, ok := videos[r.VideoID]; ok && v.Title != "" {
			r.Title = v.Title
		} else {
			r.Title = DeletedVideoTitle
		}
	}
	return rows, nil
}

// GetDailyStats returns one row per calendar date with activity in the
// trailing window, ascending. Consumers drawing charts must handle gaps.
func (s *Service) GetDailyStats(ctx context.Context, days int) ([]DailyStats, error) {
	// The drivers disagree on what DATE() scans as, so format the date to
	// text inside each dialect.
	dateExpr := `strftime('%Y-%m-%d', created_at)`
	if s.db.DriverName() == "postgres" {
		dateExpr = `TO_CHAR(created_at, 'YYYY-MM-DD')`
	}

	query := fmt.Sprintf(`
		SELECT
			%[1]s AS date,
			SUM(CASE WHEN event_type = 'play' THEN 1 ELSE 0 END) AS plays,
			SUM(CASE WHEN event_type = 'complete' THEN 1 ELSE 0 END) AS completions,
			SUM(CASE WHEN event_type = 'product_click' THEN 1 ELSE 0 END) AS clicks
		FROM analytics_events
		WHERE created_at >= ?
		GROUP BY %[1]s
		ORDER BY date ASC`, dateExpr)

	stats := []DailyStats{}
	if err := s.db.SelectContext(ctx, &stats, s.db.Rebind(query), windowStart(days)); err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	return stats, nil
}

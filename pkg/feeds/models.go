package feeds

import "time"

// Feed is an admin-curated named collection of videos.
type Feed struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FeedVideo is one ordered membership row joined with asset metadata.
type FeedVideo struct {
	ID        int64     `db:"id" json:"id"`
	FeedID    int64     `db:"feed_id" json:"feed_id"`
	VideoID   int64     `db:"video_id" json:"video_id"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	Mime      string    `db:"mime" json:"mime"`
}

// FeedSummary is a feed with membership count and derived thumbnail, the
// unit of the cached dashboard view.
type FeedSummary struct {
	Feed
	VideoCount   int64  `db:"video_count" json:"video_count"`
	FirstVideoID int64  `db:"first_video_id" json:"-"`
	ThumbnailURL string `db:"-" json:"thumbnail_url"`
	ThumbnailAlt string `db:"-" json:"thumbnail_alt"`
}

// FeedThumbnail is the single-feed refresh payload for one dashboard card.
type FeedThumbnail struct {
	FeedID       int64  `json:"feed_id"`
	VideoCount   int64  `json:"video_count"`
	HasVideos    bool   `json:"has_videos"`
	ThumbnailURL string `json:"thumbnail_url"`
	ThumbnailAlt string `json:"thumbnail_alt"`
}

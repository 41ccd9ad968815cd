package assets

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an asset id does not resolve.
var ErrNotFound = errors.New("asset not found")

// Video is one hydrated asset record.
type Video struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	URL          string    `db:"url" json:"url"`
	Thumbnail    string    `db:"thumbnail_url" json:"thumbnail"`
	ThumbnailAlt string    `db:"thumbnail_alt" json:"thumbnail_alt,omitempty"`
	Mime         string    `db:"mime" json:"mime"`
	AuthorID     int64     `db:"author_id" json:"author_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Thumbnail is derived thumbnail data for one asset.
type Thumbnail struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// FieldsAll and FieldsIDs select the query plan for Search. Both return
// hydrated records; FieldsIDs fetches ids first and hydrates in a second
// batched query.
const (
	FieldsAll = "all"
	FieldsIDs = "ids"
)

// DefaultPerPage is the gallery page size when none is requested.
const DefaultPerPage = 20

// maxPerPage caps a single gallery page.
const maxPerPage = 100

// SearchOptions narrow a gallery search.
type SearchOptions struct {
	// Search filters by title substring; empty matches everything.
	Search string
	// Page is 1-based.
	Page    int
	PerPage int
	// AuthorID restricts results to one uploader when > 0. Admin contexts
	// leave it zero and see all assets.
	AuthorID int64
	// Fields is FieldsAll or FieldsIDs.
	Fields string
}

func (o *SearchOptions) normalize() error {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.PerPage > maxPerPage {
		o.PerPage = maxPerPage
	}
	switch o.Fields {
	case "":
		o.Fields = FieldsAll
	case FieldsAll, FieldsIDs:
	default:
		return fmt.Errorf("unknown fields selector %q", o.Fields)
	}
	return nil
}

// SearchResult is one page of hydrated records plus pagination totals.
type SearchResult struct {
	Videos []Video `json:"videos"`
	Total  int64   `json:"total"`
	Pages  int     `json:"pages"`
}

// Store is the read interface over the asset library.
type Store interface {
	// Search returns one page of video assets.
	Search(ctx context.Context, opts SearchOptions) (*SearchResult, error)
	// Get returns one asset or ErrNotFound.
	Get(ctx context.Context, id int64) (*Video, error)
	// GetBatch returns the subset of ids that exist, keyed by id. Missing
	// ids are simply absent; callers decide how to handle dangling
	// references.
	GetBatch(ctx context.Context, ids []int64) (map[int64]Video, error)
	// Exists reports whether an asset id resolves.
	Exists(ctx context.Context, id int64) (bool, error)
	// ThumbnailData returns the asset's thumbnail, substituting fallbackAlt
	// when the stored alt text is empty. A missing or thumbnail-less asset
	// yields an empty Thumbnail, not an error.
	ThumbnailData(ctx context.Context, id int64, fallbackAlt string) (Thumbnail, error)
}

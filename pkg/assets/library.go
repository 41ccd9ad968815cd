package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// hydrateChunkSize bounds one IN (...) clause in the ids fast path.
const hydrateChunkSize = 50

// hydrateParallelism bounds concurrent hydration queries.
const hydrateParallelism = 4

// Library is the SQL-backed asset store.
type Library struct {
	db *sqlx.DB
}

// NewLibrary creates a Library over db.
func NewLibrary(db *sqlx.DB) *Library {
	return &Library{db: db}
}

// Search returns one page of ready video assets.
func (l *Library) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	where := []string{"status = 'ready'", "mime LIKE 'video/%'"}
	args := []interface{}{}

	if opts.Search != "" {
		where = append(where, `title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Search)+"%")
	}
	if opts.AuthorID > 0 {
		where = append(where, "author_id = ?")
		args = append(args, opts.AuthorID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := l.db.Rebind("SELECT COUNT(*) FROM assets WHERE " + cond)
	if err := l.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}

	result := &SearchResult{
		Videos: []Video{},
		Total:  total,
		Pages:  int(math.Ceil(float64(total) / float64(opts.PerPage))),
	}
	if total == 0 {
		return result, nil
	}

	limit := opts.PerPage
	offset := (opts.Page - 1) * opts.PerPage
	pageArgs := append(append([]interface{}{}, args...), limit, offset)

	if opts.Fields == FieldsIDs {
		var ids []int64
		idQuery := l.db.Rebind(
			"SELECT id FROM assets WHERE " + cond + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
		if err := l.db.SelectContext(ctx, &ids, idQuery, pageArgs...); err != nil {
			return nil, fmt.Errorf("select asset ids: %w", err)
		}
		videos, err := l.hydrate(ctx, ids)
		if err != nil {
			return nil, err
		}
		result.Videos = videos
		return result, nil
	}

	query := l.db.Rebind(
		"SELECT id, title, url, thumbnail_url, thumbnail_alt, mime, author_id, created_at" +
			" FROM assets WHERE " + cond + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	if err := l.db.SelectContext(ctx, &result.Videos, query, pageArgs...); err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	return result, nil
}

// hydrate fetches full records for ids in chunks, concurrently, and returns
// them in the original id order. Ids that no longer resolve are dropped.
func (l *Library) hydrate(ctx context.Context, ids []int64) ([]Video, error) {
	if len(ids) == 0 {
		return []Video{}, nil
	}

	byID := make(map[int64]Video, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateParallelism)

	for start := 0; start < len(ids); start += hydrateChunkSize {
		end := start + hydrateChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		g.Go(func() error {
			fetched, err := l.GetBatch(gctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for id, v := range fetched {
				byID[id] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// Count returns the number of ready video assets, the same population
// Search draws from. Used by the metrics endpoint for the video gauge.
func (l *Library) Count(ctx context.Context) (int64, error) {
	var n int64
	err := l.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM assets WHERE status = 'ready' AND mime LIKE 'video/%'")
	if err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}

// Get returns one asset or ErrNotFound.
func (l *Library) Get(ctx context.Context, id int64) (*Video, error) {
	var v Video
	query := l.db.Rebind(
		"SELECT id, title, url, thumbnail_url, thumbnail_alt, mime, author_id, created_at FROM assets WHERE id = ?")
	err := l.db.GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %d: %w", id, err)
	}
	return &v, nil
}

// GetBatch returns the existing subset of ids keyed by id.
func (l *Library) GetBatch(ctx context.Context, ids []int64) (map[int64]Video, error) {
	if len(ids) == 0 {
		return map[int64]Video{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT id, title, url, thumbnail_url, thumbnail_alt, mime, author_id, created_at FROM assets WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build asset batch query: %w", err)
	}

	var videos []Video
	if err := l.db.SelectContext(ctx, &videos, l.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select asset batch: %w", err)
	}

	byID := make(map[int64]Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	return byID, nil
}

// Exists reports whether an asset id resolves.
func (l *Library) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	query := l.db.Rebind("SELECT COUNT(*) FROM assets WHERE id = ?")
	if err := l.db.GetContext(ctx, &n, query, id); err != nil {
		return false, fmt.Errorf("check asset %d: %w", id, err)
	}
	return n > 0, nil
}

// ThumbnailData returns thumbnail URL and alt text for an asset. A deleted
// asset or one without a thumbnail yields empty fields rather than an error,
// so feed cards degrade instead of breaking.
func (l *Library) ThumbnailData(ctx context.Context, id int64, fallbackAlt string) (Thumbnail, error) {
	if id <= 0 {
		return Thumbnail{}, nil
	}
	v, err := l.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Thumbnail{}, nil
	}
	if err != nil {
		return Thumbnail{}, err
	}
	if v.Thumbnail == "" {
		return Thumbnail{}, nil
	}
	alt := v.ThumbnailAlt
	if alt == "" {
		alt = fallbackAlt
	}
	return Thumbnail{URL: v.Thumbnail, Alt: alt}, nil
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

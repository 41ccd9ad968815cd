package assets

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelworks/reelit/pkg/storage"
)

// setupTestDB creates a migrated in-memory SQLite database.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(storage.Config{Driver: "sqlite3", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), db))
	return db
}

func seedAsset(t *testing.T, db *sqlx.DB, title, mime string, authorID int64) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO assets (title, url, thumbnail_url, thumbnail_alt, mime, author_id) VALUES (?, ?, ?, ?, ?, ?)`,
		title, "https://cdn.example.com/"+title+".mp4", "https://cdn.example.com/"+title+".jpg", "", mime, authorID,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestLibrarySearchPagination(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		seedAsset(t, db, fmt.Sprintf("clip-%02d", i), "video/mp4", 1)
	}

	result, err := lib.Search(ctx, SearchOptions{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.Total)
	assert.Equal(t, 3, result.Pages)
	assert.Len(t, result.Videos, 10)

	last, err := lib.Search(ctx, SearchOptions{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, last.Videos, 5)

	empty, err := lib.Search(ctx, SearchOptions{Page: 4, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Videos)
	assert.Equal(t, int64(25), empty.Total)
}

func TestLibrarySearchFiltersNonVideoAndNonReady(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	seedAsset(t, db, "a-video", "video/mp4", 1)
	seedAsset(t, db, "a-picture", "image/jpeg", 1)
	_, err := db.Exec(`INSERT INTO assets (title, mime, status) VALUES ('pending-video', 'video/mp4', 'processing')`)
	require.NoError(t, err)

	result, err := lib.Search(ctx, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "a-video", result.Videos[0].Title)
}

func TestLibrarySearchByTitleAndAuthor(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	seedAsset(t, db, "summer sale teaser", "video/mp4", 7)
	seedAsset(t, db, "summer lookbook", "video/webm", 8)
	seedAsset(t, db, "winter teaser", "video/mp4", 7)

	bySearch, err := lib.Search(ctx, SearchOptions{Search: "summer"})
	require.NoError(t, err)
	assert.Len(t, bySearch.Videos, 2)

	byAuthor, err := lib.Search(ctx, SearchOptions{AuthorID: 7})
	require.NoError(t, err)
	assert.Len(t, byAuthor.Videos, 2)

	both, err := lib.Search(ctx, SearchOptions{Search: "summer", AuthorID: 7})
	require.NoError(t, err)
	require.Len(t, both.Videos, 1)
	assert.Equal(t, "summer sale teaser", both.Videos[0].Title)

	// LIKE wildcards in the term must not act as wildcards.
	wild, err := lib.Search(ctx, SearchOptions{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, wild.Videos)
}

func TestLibrarySearchIDsPathReturnsHydratedRecords(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		seedAsset(t, db, fmt.Sprintf("hydrate-%d", i), "video/mp4", 1)
	}

	full, err := lib.Search(ctx, SearchOptions{PerPage: 8, Fields: FieldsAll})
	require.NoError(t, err)
	fast, err := lib.Search(ctx, SearchOptions{PerPage: 8, Fields: FieldsIDs})
	require.NoError(t, err)

	// Same records, same order, regardless of query plan.
	require.Equal(t, len(full.Videos), len(fast.Videos))
	for i := range full.Videos {
		assert.Equal(t, full.Videos[i].ID, fast.Videos[i].ID)
		assert.Equal(t, full.Videos[i].Title, fast.Videos[i].Title)
		assert.NotEmpty(t, fast.Videos[i].URL)
		assert.NotEmpty(t, fast.Videos[i].Mime)
	}
	assert.Equal(t, full.Total, fast.Total)
	assert.Equal(t, full.Pages, fast.Pages)
}

func TestLibrarySearchRejectsUnknownFields(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)

	_, err := lib.Search(context.Background(), SearchOptions{Fields: "titles"})
	assert.Error(t, err)
}

func TestLibraryGetAndExists(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	id := seedAsset(t, db, "solo", "video/mp4", 3)

	v, err := lib.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "solo", v.Title)
	assert.Equal(t, int64(3), v.AuthorID)

	_, err = lib.Get(ctx, id+100)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := lib.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lib.Exists(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLibraryGetBatchDropsMissingIDs(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	a := seedAsset(t, db, "first", "video/mp4", 1)
	b := seedAsset(t, db, "second", "video/mp4", 1)

	got, err := lib.GetBatch(ctx, []int64{a, b, 9999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, a)
	assert.Contains(t, got, b)
}

func TestLibraryThumbnailData(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibrary(db)
	ctx := context.Background()

	id := seedAsset(t, db, "thumbed", "video/mp4", 1)

	thumb, err := lib.ThumbnailData(ctx, id, "Thumbnail for Summer")
	require.NoError(t, err)
	assert.NotEmpty(t, thumb.URL)
	assert.Equal(t, "Thumbnail for Summer", thumb.Alt, "empty stored alt falls back")

	_, err = db.Exec(`UPDATE assets SET thumbnail_alt = 'hand-written alt' WHERE id = ?`, id)
	require.NoError(t, err)
	thumb, err = lib.ThumbnailData(ctx, id, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "hand-written alt", thumb.Alt)

	// Dangling and zero ids degrade to an empty thumbnail.
	thumb, err = lib.ThumbnailData(ctx, 9999, "fallback")
	require.NoError(t, err)
	assert.Empty(t, thumb.URL)

	thumb, err = lib.ThumbnailData(ctx, 0, "fallback")
	require.NoError(t, err)
	assert.Empty(t, thumb.URL)
}

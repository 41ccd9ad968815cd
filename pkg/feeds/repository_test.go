package feeds

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelworks/reelit/pkg/assets"
	"github.com/reelworks/reelit/pkg/storage"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(storage.Config{Driver: "sqlite3", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), db))
	return db
}

func newTestRepository(t *testing.T, db *sqlx.DB) *Repository {
	t.Helper()
	return NewRepository(db, NopCache{}, assets.NewLibrary(db))
}

func seedAsset(t *testing.T, db *sqlx.DB, title string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO assets (title, url, thumbnail_url, mime) VALUES (?, ?, ?, 'video/mp4')`,
		title, "https://cdn.example.com/"+title+".mp4", "https://cdn.example.com/"+title+".jpg",
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestCreateFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Summer", "")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	feed, err := repo.GetFeed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Summer", feed.Name)
	assert.Empty(t, feed.Description)
	assert.False(t, feed.CreatedAt.IsZero())
}

func TestCreateFeedRejectsEmptyName(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)

	_, err := repo.CreateFeed(context.Background(), "   ", "desc")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateFeedDuplicateNameLeavesOriginalIntact(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Summer", "original")
	require.NoError(t, err)

	_, err = repo.CreateFeed(ctx, "Summer", "impostor")
	assert.ErrorIs(t, err, ErrDuplicateName)

	feed, err := repo.GetFeed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original", feed.Description)

	all, err := repo.GetFeeds(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Summer", "before")
	require.NoError(t, err)

	updated, err := repo.UpdateFeed(ctx, id, "Autumn", "after")
	require.NoError(t, err)
	assert.True(t, updated)

	feed, err := repo.GetFeed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Autumn", feed.Name)
	assert.Equal(t, "after", feed.Description)
	assert.False(t, feed.UpdatedAt.Before(feed.CreatedAt))
}

func TestUpdateFeedMissingIDIsZeroEffect(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)

	updated, err := repo.UpdateFeed(context.Background(), 12345, "Ghost", "")
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUpdateFeedDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	_, err := repo.CreateFeed(ctx, "Summer", "")
	require.NoError(t, err)
	id, err := repo.CreateFeed(ctx, "Winter", "")
	require.NoError(t, err)

	_, err = repo.UpdateFeed(ctx, id, "Summer", "")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeleteFeedCascadesMemberships(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Summer", "")
	require.NoError(t, err)
	v1 := seedAsset(t, db, "one")
	v2 := seedAsset(t, db, "two")
	_, err = repo.AddVideoToFeed(ctx, id, v1, 0)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, id, v2, 1)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteFeed(ctx, id))

	_, err = repo.GetFeed(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int
	require.NoError(t, db.Get(&orphans, `SELECT COUNT(*) FROM feed_videos WHERE feed_id = ?`, id))
	assert.Zero(t, orphans)

	// Idempotent: deleting again succeeds with zero effect.
	assert.NoError(t, repo.DeleteFeed(ctx, id))
}

func TestGetFeedsSortedByName(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	for _, name := range []string{"Winter", "Autumn", "Summer"} {
		_, err := repo.CreateFeed(ctx, name, "")
		require.NoError(t, err)
	}

	all, err := repo.GetFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Autumn", all[0].Name)
	assert.Equal(t, "Summer", all[1].Name)
	assert.Equal(t, "Winter", all[2].Name)
}

func TestGetFeedVideosOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Ordered", "")
	require.NoError(t, err)
	a := seedAsset(t, db, "a")
	b := seedAsset(t, db, "b")
	c := seedAsset(t, db, "c")

	// Colliding sort_order values: membership id breaks the tie.
	_, err = repo.AddVideoToFeed(ctx, id, b, 5)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, id, c, 5)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, id, a, 0)
	require.NoError(t, err)

	videos, err := repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, []int64{a, b, c}, []int64{videos[0].VideoID, videos[1].VideoID, videos[2].VideoID})
	assert.Equal(t, "a", videos[0].Title)
	assert.NotEmpty(t, videos[0].URL)
	assert.Equal(t, "video/mp4", videos[0].Mime)
}

func TestAddRemoveVideoRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "RoundTrip", "")
	require.NoError(t, err)
	v := seedAsset(t, db, "clip")

	_, err = repo.AddVideoToFeed(ctx, id, v, 0)
	require.NoError(t, err)

	videos, err := repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, v, videos[0].VideoID)

	removed, err := repo.RemoveVideoFromFeed(ctx, id, v)
	require.NoError(t, err)
	assert.True(t, removed)

	videos, err = repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, videos)

	removed, err = repo.RemoveVideoFromFeed(ctx, id, v)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUpdateVideoSortOrderReorders(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Summer", "")
	require.NoError(t, err)
	v101 := seedAsset(t, db, "101")
	v102 := seedAsset(t, db, "102")
	_, err = repo.AddVideoToFeed(ctx, id, v101, 0)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, id, v102, 1)
	require.NoError(t, err)

	videos, err := repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{v101, v102}, []int64{videos[0].VideoID, videos[1].VideoID})

	ok, err := repo.UpdateVideoSortOrder(ctx, id, v102, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateVideoSortOrder(ctx, id, v101, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	videos, err = repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{v102, v101}, []int64{videos[0].VideoID, videos[1].VideoID})
}

func TestDuplicateMembershipAllowed(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Dups", "")
	require.NoError(t, err)
	v := seedAsset(t, db, "twice")

	_, err = repo.AddVideoToFeed(ctx, id, v, 0)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, id, v, 1)
	require.NoError(t, err)

	videos, err := repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	// Removal takes out every occurrence.
	removed, err := repo.RemoveVideoFromFeed(ctx, id, v)
	require.NoError(t, err)
	assert.True(t, removed)
	videos, err = repo.GetFeedVideos(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestGetFeedsWithThumbnails(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	emptyID, err := repo.CreateFeed(ctx, "Empty", "")
	require.NoError(t, err)
	fullID, err := repo.CreateFeed(ctx, "Full", "")
	require.NoError(t, err)
	v1 := seedAsset(t, db, "first")
	v2 := seedAsset(t, db, "second")
	_, err = repo.AddVideoToFeed(ctx, fullID, v2, 0)
	require.NoError(t, err)
	_, err = repo.AddVideoToFeed(ctx, fullID, v1, 1)
	require.NoError(t, err)

	summaries, err := repo.GetFeedsWithThumbnails(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[int64]FeedSummary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}

	assert.Equal(t, int64(0), byID[emptyID].VideoCount)
	assert.Empty(t, byID[emptyID].ThumbnailURL)

	full := byID[fullID]
	assert.Equal(t, int64(2), full.VideoCount)
	// Thumbnail comes from the lowest-id member video, not insertion order.
	assert.Equal(t, "https://cdn.example.com/first.jpg", full.ThumbnailURL)
	assert.Equal(t, "Thumbnail for Full", full.ThumbnailAlt)
}

func TestGetFeedThumbnailData(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepository(t, db)
	ctx := context.Background()

	id, err := repo.CreateFeed(ctx, "Cards", "")
	require.NoError(t, err)

	card, err := repo.GetFeedThumbnailData(ctx, id)
	require.NoError(t, err)
	assert.False(t, card.HasVideos)
	assert.Zero(t, card.VideoCount)

	v := seedAsset(t, db, "card")
	_, err = repo.AddVideoToFeed(ctx, id, v, 0)
	require.NoError(t, err)

	card, err = repo.GetFeedThumbnailData(ctx, id)
	require.NoError(t, err)
	assert.True(t, card.HasVideos)
	assert.Equal(t, int64(1), card.VideoCount)
	assert.Equal(t, "https://cdn.example.com/card.jpg", card.ThumbnailURL)

	_, err = repo.GetFeedThumbnailData(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

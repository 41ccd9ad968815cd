package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelworks/reelit/pkg/feeds"
)

func createTestFeed(t *testing.T, env *testEnv, name string) int64 {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/v1/feeds", FeedRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp IDResponse
	decodeBody(t, rec, &resp)
	require.Greater(t, resp.ID, int64(0))
	return resp.ID
}

func TestCreateFeedEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/feeds", FeedRequest{
		Name:        "Summer Sale",
		Description: "seasonal picks",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp IDResponse
	decodeBody(t, rec, &resp)
	assert.Greater(t, resp.ID, int64(0))
}

func TestCreateFeedValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/feeds", FeedRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	createTestFeed(t, env, "Summer Sale")
	rec = env.do(t, http.MethodPost, "/api/v1/feeds", FeedRequest{Name: "Summer Sale"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetFeedEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	id := createTestFeed(t, env, "Summer Sale")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var feed feeds.Feed
	decodeBody(t, rec, &feed)
	assert.Equal(t, "Summer Sale", feed.Name)

	rec = env.do(t, http.MethodGet, "/api/v1/feeds/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/feeds/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFeedEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	id := createTestFeed(t, env, "Summer Sale")

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/feeds/%d", id), FeedRequest{
		Name:        "Winter Sale",
		Description: "updated",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d", id), nil)
	var feed feeds.Feed
	decodeBody(t, rec, &feed)
	assert.Equal(t, "Winter Sale", feed.Name)
	assert.Equal(t, "updated", feed.Description)

	rec = env.do(t, http.MethodPut, "/api/v1/feeds/9999", FeedRequest{Name: "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFeedEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	id := createTestFeed(t, env, "Summer Sale")

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/feeds/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again is a no-op, not an error.
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/feeds/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListFeedsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	createTestFeed(t, env, "Bravo")
	createTestFeed(t, env, "Alpha")

	rec := env.do(t, http.MethodGet, "/api/v1/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []feeds.Feed
	decodeBody(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Bravo", list[1].Name)
}

func TestFeedSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	feedID := createTestFeed(t, env, "Summer Sale")
	videoID := env.seedAsset(t, "Beach")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), AddVideoRequest{
		VideoID: videoID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/feeds/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []feeds.FeedSummary
	decodeBody(t, rec, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].VideoCount)
	assert.NotEmpty(t, summaries[0].ThumbnailURL)
}

func TestFeedVideoMembershipEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	feedID := createTestFeed(t, env, "Summer Sale")
	first := env.seedAsset(t, "Beach")
	second := env.seedAsset(t, "Sunset")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), AddVideoRequest{
		VideoID:   first,
		SortOrder: 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), AddVideoRequest{
		VideoID:   second,
		SortOrder: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var videos []feeds.FeedVideo
	decodeBody(t, rec, &videos)
	require.Len(t, videos, 2)
	assert.Equal(t, second, videos[0].VideoID)
	assert.Equal(t, first, videos[1].VideoID)

	// Reorder the first video ahead of the second.
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/feeds/%d/videos/%d/order", feedID, first), SortOrderRequest{
		SortOrder: 0,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), nil)
	videos = videos[:0]
	decodeBody(t, rec, &videos)
	require.Len(t, videos, 2)
	assert.Equal(t, first, videos[0].VideoID)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/feeds/%d/videos/%d", feedID, second), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/feeds/%d/videos/%d", feedID, second), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddVideoRejectsBadID(t *testing.T) {
	env := newTestEnv(t, nil)
	feedID := createTestFeed(t, env, "Summer Sale")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/feeds/%d/videos", feedID), AddVideoRequest{
		VideoID: 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedThumbnailEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	feedID := createTestFeed(t, env, "Summer Sale")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/feeds/%d/thumbnail", feedID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var thumb feeds.FeedThumbnail
	decodeBody(t, rec, &thumb)
	assert.False(t, thumb.HasVideos)

	rec = env.do(t, http.MethodGet, "/api/v1/feeds/9999/thumbnail", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reelworks/reelit/pkg/feeds"
	"github.com/reelworks/reelit/pkg/httputil"
)

// FeedHandlers serves the feed CRUD and membership routes.
type FeedHandlers struct {
	repo *feeds.Repository
}

func NewFeedHandlers(repo *feeds.Repository) *FeedHandlers {
	return &FeedHandlers{repo: repo}
}

// RegisterRoutes attaches the feed routes to the given router.
func (h *FeedHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/feeds", h.CreateFeed).Methods("POST")
	r.HandleFunc("/feeds", h.ListFeeds).Methods("GET")
	r.HandleFunc("/feeds/summary", h.ListFeedSummaries).Methods("GET")
	r.HandleFunc("/feeds/{id}", h.GetFeed).Methods("GET")
	r.HandleFunc("/feeds/{id}", h.UpdateFeed).Methods("PUT")
	r.HandleFunc("/feeds/{id}", h.DeleteFeed).Methods("DELETE")
	r.HandleFunc("/feeds/{id}/thumbnail", h.GetFeedThumbnail).Methods("GET")
	r.HandleFunc("/feeds/{id}/videos", h.ListFeedVideos).Methods("GET")
	r.HandleFunc("/feeds/{id}/videos", h.AddVideo).Methods("POST")
	r.HandleFunc("/feeds/{id}/videos/{videoID}", h.RemoveVideo).Methods("DELETE")
	r.HandleFunc("/feeds/{id}/videos/{videoID}/order", h.UpdateVideoOrder).Methods("PUT")
}

func (h *FeedHandlers) CreateFeed(w http.ResponseWriter, r *http.Request) {
	var req FeedRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	id, err := h.repo.CreateFeed(r.Context(), req.Name, req.Description)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	httputil.WriteCreated(w, IDResponse{ID: id})
}

func (h *FeedHandlers) ListFeeds(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.GetFeeds(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// ListFeedSummaries returns all feeds decorated with video counts and
// representative thumbnails. Backed by the feed list cache.
func (h *FeedHandlers) ListFeedSummaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.GetFeedsWithThumbnails(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	feed, err := h.repo.GetFeed(r.Context(), id)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	httputil.WriteSuccess(w, feed)
}

func (h *FeedHandlers) UpdateFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req FeedRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	updated, err := h.repo.UpdateFeed(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	if !updated {
		httputil.WriteNotFoundError(w, "feed")
		return
	}
	httputil.WriteSuccessMessage(w, "feed updated", nil)
}

// DeleteFeed removes a feed and its memberships. Deleting an absent feed is
// a no-op, so this always answers 204.
func (h *FeedHandlers) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteFeed(r.Context(), id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *FeedHandlers) GetFeedThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	thumb, err := h.repo.GetFeedThumbnailData(r.Context(), id)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	httputil.WriteSuccess(w, thumb)
}

func (h *FeedHandlers) ListFeedVideos(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	videos, err := h.repo.GetFeedVideos(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, videos)
}

func (h *FeedHandlers) AddVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req AddVideoRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.VideoID <= 0 {
		httputil.WriteValidationError(w, "video_id must be positive")
		return
	}

	membershipID, err := h.repo.AddVideoToFeed(r.Context(), id, req.VideoID, req.SortOrder)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, IDResponse{ID: membershipID})
}

func (h *FeedHandlers) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	feedID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	videoID, ok := httputil.ParsePathInt64OrError(w, r, "videoID")
	if !ok {
		return
	}

	removed, err := h.repo.RemoveVideoFromFeed(r.Context(), feedID, videoID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if !removed {
		httputil.WriteNotFoundError(w, "feed video")
		return
	}
	httputil.WriteNoContent(w)
}

func (h *FeedHandlers) UpdateVideoOrder(w http.ResponseWriter, r *http.Request) {
	feedID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	videoID, ok := httputil.ParsePathInt64OrError(w, r, "videoID")
	if !ok {
		return
	}

	var req SortOrderRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	updated, err := h.repo.UpdateVideoSortOrder(r.Context(), feedID, videoID, req.SortOrder)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if !updated {
		httputil.WriteNotFoundError(w, "feed video")
		return
	}
	httputil.WriteSuccessMessage(w, "sort order updated", nil)
}

// writeFeedError maps repository errors onto HTTP statuses.
func writeFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feeds.ErrNotFound):
		httputil.WriteNotFoundError(w, "feed")
	case errors.Is(err, feeds.ErrDuplicateName):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, feeds.ErrEmptyName):
		httputil.WriteValidationError(w, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}

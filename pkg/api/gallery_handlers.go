package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reelworks/reelit/pkg/assets"
	"github.com/reelworks/reelit/pkg/httputil"
)

// GalleryHandlers serves the video gallery browse and search routes.
type GalleryHandlers struct {
	videos assets.Store
}

func NewGalleryHandlers(videos assets.Store) *GalleryHandlers {
	return &GalleryHandlers{videos: videos}
}

// RegisterRoutes attaches the gallery routes to the given router.
func (h *GalleryHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/videos", h.SearchVideos).Methods("GET")
	r.HandleFunc("/videos/{id}", h.GetVideo).Methods("GET")
}

// SearchVideos returns one page of the gallery, filtered by title substring
// and optionally by uploader.
func (h *GalleryHandlers) SearchVideos(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteValidationError(w, "page must be an integer")
		return
	}
	perPage, err := httputil.ParseQueryInt(r, "per_page", assets.DefaultPerPage)
	if err != nil {
		httputil.WriteValidationError(w, "per_page must be an integer")
		return
	}
	authorID, err := httputil.ParseQueryInt64(r, "author", 0)
	if err != nil {
		httputil.WriteValidationError(w, "author must be an integer")
		return
	}

	fields := httputil.ParseQueryString(r, "fields", "")
	switch fields {
	case "", assets.FieldsAll, assets.FieldsIDs:
	default:
		httputil.WriteValidationError(w, "fields must be \"all\" or \"ids\"")
		return
	}

	opts := assets.SearchOptions{
		Search:   httputil.ParseQueryString(r, "search", ""),
		Page:     page,
		PerPage:  perPage,
		AuthorID: authorID,
		Fields:   fields,
	}

	result, err := h.videos.Search(r.Context(), opts)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (h *GalleryHandlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	video, err := h.videos.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			httputil.WriteNotFoundError(w, "video")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, video)
}

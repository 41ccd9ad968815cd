package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reelworks/reelit/pkg/analytics"
	"github.com/reelworks/reelit/pkg/httputil"
)

// defaultWindowDays is the reporting window when the caller does not pick one.
const defaultWindowDays = 30

// AnalyticsHandlers serves the engagement reporting routes.
type AnalyticsHandlers struct {
	stats *analytics.Service
}

func NewAnalyticsHandlers(stats *analytics.Service) *AnalyticsHandlers {
	return &AnalyticsHandlers{stats: stats}
}

// RegisterRoutes attaches the analytics routes to the given router.
func (h *AnalyticsHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics/summary", h.GetSummary).Methods("GET")
	r.HandleFunc("/analytics/top-videos", h.GetTopVideos).Methods("GET")
	r.HandleFunc("/analytics/daily", h.GetDaily).Methods("GET")
}

func (h *AnalyticsHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	days, ok := parseWindowDays(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.GetSummaryStats(r.Context(), days)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}

func (h *AnalyticsHandlers) GetTopVideos(w http.ResponseWriter, r *http.Request) {
	days, ok := parseWindowDays(w, r)
	if !ok {
		return
	}
	limit, err := httputil.ParseQueryInt(r, "limit", analytics.DefaultTopVideosLimit)
	if err != nil || limit < 1 {
		httputil.WriteValidationError(w, "limit must be a positive integer")
		return
	}

	rows, err := h.stats.GetTopVideos(r.Context(), days, limit)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, rows)
}

func (h *AnalyticsHandlers) GetDaily(w http.ResponseWriter, r *http.Request) {
	days, ok := parseWindowDays(w, r)
	if !ok {
		return
	}

	rows, err := h.stats.GetDailyStats(r.Context(), days)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, rows)
}

func parseWindowDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	days, err := httputil.ParseQueryInt(r, "days", defaultWindowDays)
	if err != nil || days < 0 {
		httputil.WriteValidationError(w, "days must be a non-negative integer")
		return 0, false
	}
	return days, true
}

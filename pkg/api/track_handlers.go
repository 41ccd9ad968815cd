package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reelworks/reelit/pkg/analytics"
	"github.com/reelworks/reelit/pkg/httputil"
	"github.com/reelworks/reelit/pkg/observability"
)

// TrackHandlers serves the public event ingestion route. It is the only
// unauthenticated data endpoint, so every field is validated before a row
// is written.
type TrackHandlers struct {
	events  *analytics.EventStore
	metrics *observability.Metrics
}

func NewTrackHandlers(events *analytics.EventStore, metrics *observability.Metrics) *TrackHandlers {
	return &TrackHandlers{events: events, metrics: metrics}
}

// RegisterRoutes attaches the tracking route to the given router.
func (h *TrackHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/track", h.Track).Methods("POST")
}

func (h *TrackHandlers) Track(w http.ResponseWriter, r *http.Request) {
	var event analytics.Event
	if !httputil.ParseJSONOrError(w, r, &event) {
		return
	}

	if _, err := h.events.Record(r.Context(), event); err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidEventType),
			errors.Is(err, analytics.ErrMissingSession),
			errors.Is(err, analytics.ErrUnknownVideo):
			httputil.WriteValidationError(w, err.Error())
		default:
			httputil.WriteInternalError(w, err)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.EventsRecordedTotal.WithLabelValues(event.Type).Inc()
	}
	httputil.WriteSuccessMessage(w, "tracked", nil)
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/reelworks/reelit/pkg/analytics"
	"github.com/reelworks/reelit/pkg/assets"
	"github.com/reelworks/reelit/pkg/feeds"
	"github.com/reelworks/reelit/pkg/httputil"
	"github.com/reelworks/reelit/pkg/observability"
	"github.com/reelworks/reelit/pkg/products"
)

// maxBodyBytes bounds request bodies; the largest legitimate payload is a
// product id list.
const maxBodyBytes = 1 << 20

// Options wires the server's dependencies. Metrics, Registry, Health and
// Tracing are optional; nil disables the corresponding surface.
type Options struct {
	Feeds  *feeds.Repository
	Videos assets.Store
	Events *analytics.EventStore
	Stats  *analytics.Service
	Tagger *products.Tagger

	Health   *observability.HealthChecker
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	// OnScrape runs before each /metrics response; the entrypoint uses it to
	// refresh pool-stat and entity-count gauges so they are current at
	// scrape time instead of on a timer.
	OnScrape func()

	// AdminToken guards the admin routes. Empty disables them entirely
	// rather than leaving them open.
	AdminToken string

	// CORSAllowedOrigins enables CORS for the listed origins; empty leaves
	// the headers off.
	CORSAllowedOrigins []string

	Tracing bool
}

// Server is the HTTP front of the service.
type Server struct {
	router  *mux.Router
	handler http.Handler
	opts    Options
}

// NewServer builds the router, registers all route groups, and assembles
// the middleware chain.
func NewServer(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
	}

	s.setupRoutes()

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware,
		httputil.RecoveryMiddleware,
	}
	if len(opts.CORSAllowedOrigins) > 0 {
		chain = append(chain, httputil.CORSMiddleware(opts.CORSAllowedOrigins))
	}
	chain = append(chain, httputil.MaxBytesMiddleware(maxBodyBytes))
	if opts.Metrics != nil {
		chain = append(chain, observability.HTTPMetricsMiddleware(opts.Metrics, s.routeTemplate))
	}

	var handler http.Handler = s.router
	handler = httputil.Chain(chain...)(handler)
	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "reelit-api")
	}
	s.handler = handler

	return s
}

func (s *Server) setupRoutes() {
	// Operational routes stay open; they carry no data.
	if s.opts.Health != nil {
		s.router.HandleFunc("/healthz", s.opts.Health.Readiness).Methods("GET")
		s.router.HandleFunc("/healthz/live", s.opts.Health.Liveness).Methods("GET")
	}
	if s.opts.Registry != nil {
		metricsHandler := observability.MetricsHandler(s.opts.Registry)
		if s.opts.OnScrape != nil {
			inner := metricsHandler
			metricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s.opts.OnScrape()
				inner.ServeHTTP(w, r)
			})
		}
		s.router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// Public tracking endpoint: validates its own inputs, never trusts the
	// caller.
	public := s.router.PathPrefix("/api/v1").Subrouter()
	NewTrackHandlers(s.opts.Events, s.opts.Metrics).RegisterRoutes(public)

	// Admin surface behind the bearer token.
	if s.opts.AdminToken == "" {
		return
	}
	admin := s.router.PathPrefix("/api/v1").Subrouter()
	admin.Use(RequireBearerToken(s.opts.AdminToken))

	NewFeedHandlers(s.opts.Feeds).RegisterRoutes(admin)
	NewGalleryHandlers(s.opts.Videos).RegisterRoutes(admin)
	NewAnalyticsHandlers(s.opts.Stats).RegisterRoutes(admin)
	NewProductHandlers(s.opts.Tagger).RegisterRoutes(admin)
}

// routeTemplate returns the matched mux route template for metrics labels,
// falling back to the raw path for unmatched requests.
func (s *Server) routeTemplate(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Package api exposes the HTTP surface: feed management, gallery search,
// analytics dashboards, product tagging, and the public tracking endpoint.
//
// # Route Groups
//
// Admin routes under /api/v1 require a bearer token and cover feeds,
// videos, analytics, and products. The tracking endpoint POST /api/v1/track
// is public and validates its own inputs. /healthz and /metrics serve
// probes and Prometheus scrapes.
//
// # Structure
//
// Server owns the router and middleware chain; each domain gets its own
// handler type (FeedHandlers, GalleryHandlers, AnalyticsHandlers,
// ProductHandlers, TrackHandlers) registering routes on the shared router.
package api

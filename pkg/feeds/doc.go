// Package feeds owns video feeds (galleries) and their ordered memberships.
//
// Repository provides feed CRUD, membership management, and the composite
// "feeds with thumbnails" view used by the admin dashboard. That view is the
// one expensive read in the package, so it is cached whole under a single key
// with a one-hour TTL; every mutation to feeds or memberships deletes the key
// immediately rather than waiting for expiry, because staleness after an
// admin edit would be visible within the same session.
//
// The cache is an injected Cache interface with Redis, in-process LRU, and
// no-op implementations, so repository tests run against whichever is
// convenient and deployments degrade gracefully without Redis.
package feeds

package feeds

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Cache is the read cache injected into Repository. Implementations store
// whole serialized values and replace them atomically; a Get that races a
// Delete sees either the old value or nothing, never a torn entry. Set and
// Delete are best-effort: cache failures degrade to database reads and must
// never fail a repository operation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// RedisCache is the shared-cache implementation used when the service runs
// with Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("redis cache get failed")
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("redis cache set failed")
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("redis cache delete failed")
	}
}

// MemoryCache is an in-process expirable LRU used when Redis is not
// configured. The TTL is fixed at construction; the per-call ttl argument is
// ignored, which is fine for the single feed-list entry this package caches.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an in-process cache holding up to size entries for
// up to ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 128
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.lru.Add(key, value)
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.lru.Remove(key)
	}
}

// NopCache disables caching entirely; every read recomputes.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool)            { return nil, false }
func (NopCache) Set(context.Context, string, []byte, time.Duration)    {}
func (NopCache) Delete(context.Context, ...string)                     {}

// InstrumentedCache decorates another Cache with hit/miss counters, labeled
// by cache key. This package caches a handful of well-known keys, so the
// label cardinality stays bounded.
type InstrumentedCache struct {
	inner  Cache
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewInstrumentedCache wraps inner with the given counters.
func NewInstrumentedCache(inner Cache, hits, misses *prometheus.CounterVec) *InstrumentedCache {
	return &InstrumentedCache{inner: inner, hits: hits, misses: misses}
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, ok := c.inner.Get(ctx, key)
	if ok {
		c.hits.WithLabelValues(key).Inc()
	} else {
		c.misses.WithLabelValues(key).Inc()
	}
	return data, ok
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.inner.Set(ctx, key, value, ttl)
}

func (c *InstrumentedCache) Delete(ctx context.Context, keys ...string) {
	c.inner.Delete(ctx, keys...)
}

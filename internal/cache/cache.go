// Package cache provides the cache-aside wrapper for read-heavy list queries.
//
// The cache is an optimization, never a correctness dependency: any Redis
// failure, including a missing client, degrades to calling the loader. Writers
// invalidate by enumerating keys; the enumerated sets live in keys.go next to
// the key builders so the two cannot drift apart silently.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds staleness for cached list shapes when a writer misses an
// invalidation case.
const DefaultTTL = 5 * time.Minute

// Metrics receives hit/miss outcomes. Satisfied by platform/metrics.
type Metrics interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// Cache wraps a Redis client with degrade-to-miss semantics. A nil Cache or
// a Cache with a nil client is valid and always calls the loader.
type Cache struct {
	client  *redis.Client
	logger  *slog.Logger
	metrics Metrics
}

// Option configures the Cache.
type Option func(*Cache)

// WithLogger sets the logger for degraded reads.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithMetrics sets the hit/miss collector.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New constructs a Cache. client may be nil when Redis is not configured.
func New(client *redis.Client, opts ...Option) *Cache {
	c := &Cache{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrLoad returns the cached value for key, or calls loader on miss and
// stores the result with the given TTL.
//
// Concurrent loads for the same key race to a last-write-wins SET, which is
// acceptable because entries are never authoritative. Cache errors on either
// the read or the write path are logged and swallowed; the loader's result is
// always returned.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	if c == nil || c.client == nil {
		var zero T
		v, err := loader(ctx)
		if err != nil {
			return zero, err
		}
		return v, nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			if c.metrics != nil {
				c.metrics.ObserveCacheHit()
			}
			return cached, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "cache read failed, degrading to loader", "key", key, "error", err)
	}

	if c.metrics != nil {
		c.metrics.ObserveCacheMiss()
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if err := c.client.Set(ctx, key, encoded, ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}

// Invalidate deletes the enumerated keys. Errors are logged and swallowed:
// a failed delete only extends staleness to the TTL bound.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

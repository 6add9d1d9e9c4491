// Package cache stores JSON encoded values in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrNilClient is returned when the cache has no Redis client.
var ErrNilClient = errors.New("cache: redis client is nil")

// Loader produces the value for a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Stats counts cache outcomes.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// Cache is a typed, prefixed view over a Redis keyspace.
type Cache[T any] struct {
	rc     redis.Cmdable
	prefix string
	ttl    time.Duration
	group  singleflight.Group

	hits, misses, errs atomic.Int64
}

// NewCache creates a cache. A nil client yields a cache whose reads miss
// and whose writes fail with ErrNilClient.
func NewCache[T any](rc redis.Cmdable, prefix string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{rc: rc, prefix: prefix, ttl: ttl}
}

// Key returns the full Redis key for field.
func (c *Cache[T]) Key(field string) string {
	if c.prefix == "" {
		return field
	}
	return fmt.Sprintf("%s:%s", c.prefix, field)
}

// Get returns the cached value. The bool is false on a miss.
func (c *Cache[T]) Get(ctx context.Context, field string) (T, bool, error) {
	var zero T
	if c.rc == nil {
		c.misses.Add(1)
		return zero, false, nil
	}

	raw, err := c.rc.Get(ctx, c.Key(field)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return zero, false, nil
	}
	if err != nil {
		c.errs.Add(1)
		return zero, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.errs.Add(1)
		return zero, false, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	c.hits.Add(1)
	return v, true, nil
}

// Set stores v under field with the cache TTL.
func (c *Cache[T]) Set(ctx context.Context, field string, v T) error {
	if c.rc == nil {
		return ErrNilClient
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := c.rc.Set(ctx, c.Key(field), data, c.ttl).Err(); err != nil {
		c.errs.Add(1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes field.
func (c *Cache[T]) Delete(ctx context.Context, field string) error {
	if c.rc == nil {
		return ErrNilClient
	}
	if err := c.rc.Del(ctx, c.Key(field)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// GetOrLoad returns the cached value or calls load once per field across
// concurrent callers. Cache failures never fail the call; only load errors
// are returned.
func (c *Cache[T]) GetOrLoad(ctx context.Context, field string, load Loader[T]) (T, error) {
	if v, ok, err := c.Get(ctx, field); err == nil && ok {
		return v, nil
	}

	res, err, _ := c.group.Do(field, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		_ = c.Set(ctx, field, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Stats returns a snapshot of the counters.
func (c *Cache[T]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Errors: c.errs.Load()}
}

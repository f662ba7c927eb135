// Package redis adapts the process-scoped cache port (§2 C5) onto a shared
// Redis instance, for deployments that run more than one process and need
// the robots cache to agree. The fetch cache does not go through this
// adapter; it stays in-process.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	goredis "github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.Cache = (*Cache)(nil)

const keyPrefix = "webfetch:cache:"

// Cache implements driven.Cache over a Redis client. Expiry is delegated to
// Redis TTL; Len issues a key-count scan bounded to this cache's prefix.
type Cache struct {
	client *goredis.Client
	ctx    context.Context
}

// NewCache builds a Redis-backed Cache. The background context is used for
// calls through the driven.Cache interface, which (unlike the rest of the
// core) is not context-aware; callers needing cancellation should use the
// client directly.
func NewCache(client *goredis.Client) *Cache {
	return &Cache{client: client, ctx: context.Background()}
}

// Get returns the cached value for key, or ok=false on miss or Redis error.
func (c *Cache) Get(key string) ([]byte, bool) {
	val, err := c.client.Get(c.ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value under key for ttl. ttl<=0 is a no-op.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.client.Set(c.ctx, keyPrefix+key, value, ttl)
}

// Delete removes key, if present.
func (c *Cache) Delete(key string) {
	c.client.Del(c.ctx, keyPrefix+key)
}

// Len counts live entries under this cache's key prefix. Potentially slow
// on a large shared Redis instance; intended for tests and diagnostics, not
// the hot path.
func (c *Cache) Len() int {
	var count int
	iter := c.client.Scan(c.ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(c.ctx) {
		count++
	}
	return count
}

// Ping checks Redis reachability, matching the health-check convention the
// rest of the adapter layer uses for its external dependencies.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis cache ping: %w", err)
	}
	return nil
}

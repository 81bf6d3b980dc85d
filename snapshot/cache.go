// api/snapshot/cache.go
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shoppulse/api/models"
)

const defaultCacheTTL = 120 * time.Second

// Cache memoizes assembled snapshots in Redis with a short TTL, keyed by the
// lookback window. Caching is a performance optimization only: every failure
// (no client, connection error, stale encoding) is treated as a miss and the
// snapshot is assembled fresh. The behavior table is append-only at a batch
// cadence, so a couple of minutes of staleness is acceptable.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache wraps an optional Redis client. A nil client yields a no-op
// cache, so callers never branch on whether caching is configured.
func NewCache(rdb *redis.Client) *Cache {
	ttl := defaultCacheTTL
	if v := os.Getenv("SNAPSHOT_CACHE_TTL_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(days int) string {
	return fmt.Sprintf("snapshot:days:%d", days)
}

// Get returns the cached snapshot for the window, or false on any miss.
func (c *Cache) Get(ctx context.Context, days int) (*models.Snapshot, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, cacheKey(days)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Snapshot cache read failed for days=%d: %v", days, err)
		}
		return nil, false
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("Snapshot cache entry for days=%d is malformed, ignoring: %v", days, err)
		return nil, false
	}
	return &snap, true
}

// Set stores the snapshot under the window's key with the configured TTL.
func (c *Cache) Set(ctx context.Context, days int, snap *models.Snapshot) {
	if c == nil || c.rdb == nil || snap == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Failed to encode snapshot for caching (days=%d): %v", days, err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(days), data, c.ttl).Err(); err != nil {
		log.Printf("Snapshot cache write failed for days=%d: %v", days, err)
	}
}

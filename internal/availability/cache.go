package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightline-hq/brightline/pkg/logging"
)

// Cache is a short-TTL read-through cache for slot suggestions. Windows
// go stale as soon as a booking commits, so the TTL stays small rather
// than invalidating per commit.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache wires the cache; a nil client disables caching.
func NewCache(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{redis: rdb, ttl: ttl, logger: logger}
}

func cacheKey(q Query) string {
	return fmt.Sprintf("sched:slots:%s:%d:%d:%d:%d",
		q.OrgID, q.StartAt.UTC().Unix(), q.Days, q.DurationMinutes, q.Limit)
}

// Get returns the cached slot list for the query, or ok=false on a miss.
// Cache failures degrade to a miss.
func (c *Cache) Get(ctx context.Context, q Query) ([]Slot, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(q)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("slot cache read failed", "error", err)
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("slot cache entry corrupt", "error", err)
		return nil, false
	}
	return slots, true
}

// Set stores the slot list; failures are logged and ignored.
func (c *Cache) Set(ctx context.Context, q Query, slots []Slot) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(q), data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "error", err)
	}
}

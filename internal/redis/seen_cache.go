package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SeenCache remembers recently processed tweet IDs. Entries expire with the
// configured TTL; anything older than the lookback window can only be reached
// again through the database anyway.
type SeenCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSeenCache(rdb *goredis.Client, ttl time.Duration) *SeenCache {
	return &SeenCache{rdb: rdb, ttl: ttl}
}

func (c *SeenCache) Has(ctx context.Context, tweetID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, seenKey(tweetID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen cache: %w", err)
	}
	return n > 0, nil
}

func (c *SeenCache) Add(ctx context.Context, tweetID string) error {
	if err := c.rdb.Set(ctx, seenKey(tweetID), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark tweet seen: %w", err)
	}
	return nil
}

func seenKey(tweetID string) string {
	return "seen:" + tweetID
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache tracks movement IDs that have already been accepted,
// so duplicates can be rejected before touching the database. The database
// unique constraint on movements.id remains the source of truth; this cache
// is a fast path and losing it only costs a round trip to Postgres.
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a Redis-backed idempotency cache.
func NewIdempotencyCache(client *goredis.Client) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: "movement:",
	}
}

// Seen reports whether a movement ID has already been recorded.
func (c *IdempotencyCache) Seen(ctx context.Context, movementID string) (bool, error) {
	err := c.client.Get(ctx, c.prefix+movementID).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis idempotency get: %w", err)
	}
	return true, nil
}

// Remember records a movement ID after the movement has been committed.
func (c *IdempotencyCache) Remember(ctx context.Context, movementID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+movementID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

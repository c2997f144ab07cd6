package redis_test

import (
	"context"
	"testing"
	"time"

	"revpay/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewIdempotencyCache(client)
	ctx := context.Background()

	t.Run("unknown movement id is not seen", func(t *testing.T) {
		seen, err := cache.Seen(ctx, "TXN-unknown")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("remembered movement id is seen", func(t *testing.T) {
		require.NoError(t, cache.Remember(ctx, "TXN-abc123", time.Hour))

		seen, err := cache.Seen(ctx, "TXN-abc123")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("movement id expires after TTL", func(t *testing.T) {
		require.NoError(t, cache.Remember(ctx, "TXN-shortlived", time.Minute))

		mr.FastForward(61 * time.Second)

		seen, err := cache.Seen(ctx, "TXN-shortlived")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("keys are namespaced", func(t *testing.T) {
		require.NoError(t, cache.Remember(ctx, "TXN-prefixed", time.Hour))
		assert.True(t, mr.Exists("movement:TXN-prefixed"))
	})
}

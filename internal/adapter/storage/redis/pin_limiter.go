package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// PinAttemptLimiter throttles transaction PIN verification per account,
// using a fixed-window failure counter in Redis. Successful verification
// resets the counter.
type PinAttemptLimiter struct {
	client      *goredis.Client
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// NewPinAttemptLimiter creates a Redis-backed PIN attempt limiter.
func NewPinAttemptLimiter(client *goredis.Client, maxAttempts int64, window time.Duration) *PinAttemptLimiter {
	return &PinAttemptLimiter{
		client:      client,
		prefix:      "pinfail:",
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// NewLoginAttemptLimiter creates the same failure counter under a separate
// key namespace, so failed logins and failed PIN entries never share a
// budget.
func NewLoginAttemptLimiter(client *goredis.Client, maxAttempts int64, window time.Duration) *PinAttemptLimiter {
	return &PinAttemptLimiter{
		client:      client,
		prefix:      "loginfail:",
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow reports whether the account may attempt PIN verification.
func (l *PinAttemptLimiter) Allow(ctx context.Context, accountID uuid.UUID) (bool, error) {
	count, err := l.client.Get(ctx, l.prefix+accountID.String()).Int64()
	if errors.Is(err, goredis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis pin limiter get: %w", err)
	}
	return count < l.maxAttempts, nil
}

// RecordFailure increments the failure counter for the account.
func (l *PinAttemptLimiter) RecordFailure(ctx context.Context, accountID uuid.UUID) error {
	key := l.prefix + accountID.String()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis pin limiter incr: %w", err)
	}

	// Set expiry only on first failure (new window)
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return nil
}

// Reset clears the failure counter after a successful verification.
func (l *PinAttemptLimiter) Reset(ctx context.Context, accountID uuid.UUID) error {
	if err := l.client.Del(ctx, l.prefix+accountID.String()).Err(); err != nil {
		return fmt.Errorf("redis pin limiter del: %w", err)
	}
	return nil
}

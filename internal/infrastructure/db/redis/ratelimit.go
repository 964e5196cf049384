package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = time.Minute
)

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: ratelimit:<key>
type RateLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a RateLimiter allowing limit hits per window for each key.
// Non-positive values fall back to 10 per minute.
func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one hit for key and reports whether it is within the limit.
// The window starts with the first hit. INCR and EXPIRE NX run in one
// MULTI/EXEC so a counter never outlives its window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

func (l *RateLimiter) key(key string) string {
	return "ratelimit:" + key
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:leads:"

// RedisFixedWindow is a fixed-window counter backed by a shared Redis
// instance, so the quota holds across horizontally scaled replicas.
type RedisFixedWindow struct {
	client *redis.Client
	max    int
	length time.Duration
}

// NewRedisFixedWindow creates a Redis-backed limiter allowing max submissions
// per window length per key.
func NewRedisFixedWindow(client *redis.Client, max int, length time.Duration) *RedisFixedWindow {
	if client == nil {
		panic("ratelimit: redis client required")
	}
	return &RedisFixedWindow{client: client, max: max, length: length}
}

// Allow counts the current attempt and reports whether it is within quota.
// The window TTL starts on the key's first hit.
func (r *RedisFixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := redisKeyPrefix + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr failed: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.length).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: expire failed: %w", err)
		}
	}

	return count <= int64(r.max), nil
}

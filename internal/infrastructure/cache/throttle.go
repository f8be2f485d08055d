package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RedisThrottle admits one action per key per window using SET NX with a TTL
type RedisThrottle struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisThrottle creates a throttle on an existing Redis client
func NewRedisThrottle(client *redis.Client, keyPrefix string) *RedisThrottle {
	if keyPrefix == "" {
		keyPrefix = "throttle:"
	}
	return &RedisThrottle{client: client, keyPrefix: keyPrefix}
}

// Allow returns true if no action for key happened within window, and starts a new window
func (t *RedisThrottle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	ok, err := t.client.SetNX(ctx, t.keyPrefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check throttle: %w", err)
	}
	return ok, nil
}

// MemoryThrottle is the single-instance variant of RedisThrottle
type MemoryThrottle struct {
	windows *gocache.Cache
}

// NewMemoryThrottle creates an in-memory throttle
func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{windows: gocache.New(time.Minute, time.Minute)}
}

// Allow returns true if no action for key happened within window
func (t *MemoryThrottle) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	// Add fails while an unexpired entry exists
	return t.windows.Add(key, struct{}{}, window) == nil, nil
}

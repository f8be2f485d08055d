package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/sevenext/backend/internal/domain/identity"
)

const defaultOTPKeyPrefix = "otp:"

// RedisOTPStore keeps pending login codes in Redis so every instance sees them
type RedisOTPStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisOTPStore creates an OTP store on an existing Redis client
func NewRedisOTPStore(client *redis.Client, keyPrefix string) *RedisOTPStore {
	if keyPrefix == "" {
		keyPrefix = defaultOTPKeyPrefix
	}
	return &RedisOTPStore{client: client, keyPrefix: keyPrefix}
}

// Save stores code for phone, replacing any pending one
func (s *RedisOTPStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+phone, code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Consume returns the pending code and deletes it in one GETDEL
func (s *RedisOTPStore) Consume(ctx context.Context, phone string) (string, error) {
	code, err := s.client.GetDel(ctx, s.keyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", identity.ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume otp: %w", err)
	}
	return code, nil
}

// MemoryOTPStore keeps pending codes in process memory.
// Codes are lost on restart and not shared between instances.
type MemoryOTPStore struct {
	mu    sync.Mutex
	codes *gocache.Cache
}

// NewMemoryOTPStore creates an in-memory OTP store
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{codes: gocache.New(5*time.Minute, time.Minute)}
}

// Save stores code for phone, replacing any pending one
func (s *MemoryOTPStore) Save(_ context.Context, phone, code string, ttl time.Duration) error {
	s.codes.Set(phone, code, ttl)
	return nil
}

// Consume returns the pending code and deletes it
func (s *MemoryOTPStore) Consume(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.codes.Get(phone)
	if !found {
		return "", identity.ErrOTPNotFound
	}
	s.codes.Delete(phone)
	return v.(string), nil
}

var (
	_ identity.OTPStore = (*RedisOTPStore)(nil)
	_ identity.OTPStore = (*MemoryOTPStore)(nil)
)

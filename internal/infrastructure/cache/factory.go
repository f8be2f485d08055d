package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

// Stores bundles the expiring key stores used by authentication
type Stores struct {
	OTP       identity.OTPStore
	Throttle  identity.Throttle
	Blacklist auth.TokenBlacklist

	client *redis.Client
}

// Close releases the Redis connection if one is held
func (s *Stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Client returns the Redis client, or nil for in-memory stores
func (s *Stores) Client() *redis.Client {
	return s.client
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to in-memory stores
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InMemory creates process-local stores
func (f *StoreFactory) InMemory() *Stores {
	return &Stores{
		OTP:       NewMemoryOTPStore(),
		Throttle:  NewMemoryThrottle(),
		Blacklist: auth.NewInMemoryTokenBlacklist(),
	}
}

// WithRedis creates Redis-backed stores sharing one client
func WithRedis(client *redis.Client) *Stores {
	return &Stores{
		OTP:       NewRedisOTPStore(client, ""),
		Throttle:  NewRedisThrottle(client, "otp:throttle:"),
		Blacklist: auth.NewRedisTokenBlacklistWithClient(client),
		client:    client,
	}
}

// Create uses Redis when enabled and reachable, otherwise in-memory stores if fallback is allowed
func (f *StoreFactory) Create(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory OTP store and token blacklist")
		return f.InMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis OTP store and token blacklist", zap.String("addr", f.redisConfig.Addr()))
		return WithRedis(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"OTP codes and revoked tokens will not be shared between instances.",
		zap.Error(err),
	)
	return f.InMemory(), nil
}

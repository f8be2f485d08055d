package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

func TestMemoryOTPStore(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	t.Run("consume is single use", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "+919800000001", "123456", time.Minute))

		code, err := store.Consume(ctx, "+919800000001")
		require.NoError(t, err)
		assert.Equal(t, "123456", code)

		_, err = store.Consume(ctx, "+919800000001")
		assert.ErrorIs(t, err, identity.ErrOTPNotFound)
	})

	t.Run("save replaces a pending code", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "+919800000002", "111111", time.Minute))
		require.NoError(t, store.Save(ctx, "+919800000002", "222222", time.Minute))

		code, err := store.Consume(ctx, "+919800000002")
		require.NoError(t, err)
		assert.Equal(t, "222222", code)
	})

	t.Run("expired code is gone", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "+919800000003", "333333", 5*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, err := store.Consume(ctx, "+919800000003")
		assert.ErrorIs(t, err, identity.ErrOTPNotFound)
	})

	t.Run("concurrent consumers see the code once", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "+919800000004", "444444", time.Minute))

		var hits atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Consume(ctx, "+919800000004"); err == nil {
					hits.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestMemoryThrottle(t *testing.T) {
	throttle := NewMemoryThrottle()
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "+919800000001", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "+919800000001", 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = throttle.Allow(ctx, "+919800000009", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	ok, err = throttle.Allow(ctx, "+919800000001", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "any", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreFactory_Create(t *testing.T) {
	t.Run("redis disabled uses memory", func(t *testing.T) {
		stores, err := NewStoreFactory(config.RedisConfig{Enabled: false}).Create(context.Background())
		require.NoError(t, err)
		assert.IsType(t, &MemoryOTPStore{}, stores.OTP)
		assert.Nil(t, stores.Client())
		assert.NoError(t, stores.Close())
	})

	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		stores, err := NewStoreFactory(unreachable, WithLogger(zap.New(core))).Create(context.Background())
		require.NoError(t, err)
		assert.IsType(t, &MemoryThrottle{}, stores.Throttle)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		_, err := NewStoreFactory(unreachable, WithInMemoryFallback(false)).Create(context.Background())
		assert.ErrorContains(t, err, "redis required")
	})
}

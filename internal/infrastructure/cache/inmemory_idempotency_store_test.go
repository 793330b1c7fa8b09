package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swagpaypal/backend/internal/infrastructure/config"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new delivery as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "InventoryBalanceChanged:m-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for a redelivery", func(t *testing.T) {
		key := "InventoryBalanceChanged:m-2"

		isNew, err := store.MarkProcessed(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		key := "InventoryBalanceChanged:m-3"

		isNew, err := store.MarkProcessed(ctx, key, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("forget allows reprocessing", func(t *testing.T) {
		key := "InventoryBalanceChanged:m-4"

		_, err := store.MarkProcessed(ctx, key, time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Forget(ctx, key))

		isNew, err := store.MarkProcessed(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_Concurrent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(context.Background(), "same", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	store.lastSweep = clock
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	// Expired keys linger until a write after the sweep interval.
	clock = clock.Add(2 * time.Minute)
	_, _ = store.MarkProcessed(ctx, "other", time.Hour)
	assert.Equal(t, 3, store.Size())

	clock = clock.Add(sweepEvery)
	_, _ = store.MarkProcessed(ctx, "another", time.Hour)
	assert.Equal(t, 3, store.Size(), "short is swept")

	isNew, err := store.MarkProcessed(ctx, "long", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestInMemoryTokenStore(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "client")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "client", "token-1", time.Hour))
	token, ok, err := store.Get(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-1", token)

	require.NoError(t, store.Set(ctx, "expiring", "token-2", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, _ = store.Get(ctx, "expiring")
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, "client"))
	_, ok, _ = store.Get(ctx, "client")
	assert.False(t, ok)
}

func TestStoreFactory_Create(t *testing.T) {
	t.Run("redis disabled uses in-memory stores", func(t *testing.T) {
		stores, err := NewStoreFactory(config.RedisConfig{}).Create(context.Background())
		require.NoError(t, err)
		defer stores.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
		assert.IsType(t, &InMemoryTokenStore{}, stores.Tokens)
		assert.IsType(t, &InMemoryLocker{}, stores.Locks)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewStoreFactory(cfg, WithInMemoryFallback(false)).Create(context.Background())
		assert.Error(t, err)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		stores, err := NewStoreFactory(cfg).Create(context.Background())
		require.NoError(t, err)
		defer stores.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	})
}

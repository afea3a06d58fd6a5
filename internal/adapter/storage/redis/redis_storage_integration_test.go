//go:build integration

package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// setupRedis conecta no Redis de teste (REDIS_TEST_ADDR, default localhost:6380) e limpa o banco
func setupRedis(t *testing.T) *RedisStorage {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6380"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis: %v", err)
	}

	storage := NewRedisStorage(client)
	t.Cleanup(func() {
		storage.Close()
	})
	return storage
}

func TestRedisStorage_GetMissing(t *testing.T) {
	storage := setupRedis(t)

	record, err := storage.Get(context.Background(), entity.NewLimiterKey(entity.ScopeContact, "192.168.1.1"))

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRedisStorage_SetGetRoundTrip(t *testing.T) {
	// Arrange
	storage := setupRedis(t)
	ctx := context.Background()
	key := entity.NewLimiterKey(entity.ScopeQuote, "192.168.1.1")
	resetAt := time.Now().Add(time.Minute).Truncate(time.Millisecond).UTC()

	// Act
	err := storage.Set(ctx, key, &entity.RateLimitRecord{Count: 4, ResetAt: resetAt}, time.Minute)
	require.NoError(t, err)
	record, err := storage.Get(ctx, key)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, record.Count)
	assert.Equal(t, resetAt, record.ResetAt)

	ttl, err := storage.client.PTTL(ctx, key.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Second)
}

func TestRedisStorage_ExpiresAfterWindow(t *testing.T) {
	storage := setupRedis(t)
	ctx := context.Background()
	key := entity.NewLimiterKey(entity.ScopeContact, "10.0.0.1")

	require.NoError(t, storage.Set(ctx, key, &entity.RateLimitRecord{Count: 1, ResetAt: time.Now().Add(-expiryGrace)}, 0))
	time.Sleep(100 * time.Millisecond)

	record, err := storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRedisStorage_DeleteAndClear(t *testing.T) {
	storage := setupRedis(t)
	ctx := context.Background()
	record := &entity.RateLimitRecord{Count: 1, ResetAt: time.Now().Add(time.Minute)}

	for i := 0; i < 250; i++ {
		key := entity.NewLimiterKey(entity.ScopeContact, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		require.NoError(t, storage.Set(ctx, key, record, time.Minute))
	}
	quoteKey := entity.NewLimiterKey(entity.ScopeQuote, "10.0.0.1")
	require.NoError(t, storage.Set(ctx, quoteKey, record, time.Minute))

	require.NoError(t, storage.Clear(ctx, entity.ScopeContact))

	remaining, err := storage.client.DBSize(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	require.NoError(t, storage.Delete(ctx, quoteKey))
	got, err := storage.Get(ctx, quoteKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}

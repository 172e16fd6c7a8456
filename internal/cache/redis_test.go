package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to a local Redis and skips the test when none is running.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore_Panic(t *testing.T) {
	assert.Panics(t, func() { NewRedisStore(nil, "p:", 0) })
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "test:octo/blog:", time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "k", []byte(`["a"]`)))

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))

	ttl, err := client.TTL(ctx, "test:octo/blog:k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_SharedBetweenMemos(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "test:", 0)
	ctx := context.Background()

	first := NewMemo[[]string](store)
	_, err := first.Get(ctx, "k", func(ctx context.Context) ([]string, error) {
		return []string{"shared"}, nil
	})
	require.NoError(t, err)

	second := NewMemo[[]string](store)
	v, err := second.Get(ctx, "k", func(ctx context.Context) ([]string, error) {
		t.Fatal("second memo must be served by redis")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, v)
}

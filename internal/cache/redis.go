package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares memoized results between processes.
// A zero ttl keeps entries until they are deleted.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store that namespaces every key with prefix.
func NewRedisStore(redisClient *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.redis.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		StoreErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.prefix+key).Err(); err != nil {
		StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

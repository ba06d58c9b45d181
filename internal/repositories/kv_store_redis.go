package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore is a Redis implementation of KVStore.
type RedisKVStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisKVStore creates a new instance of RedisKVStore. Every key is
// stored under prefix.
func NewRedisKVStore(rdb *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisKVStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisStore
const DefaultRedisPrefix = "walletlink:"

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
	}
}

// DialRedis parses redisURL, connects and pings the server
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

var _ ports.Store = (*RedisStore)(nil)

// Set stores value under the prefixed key with expiration
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", core.ErrStoreOperation, key, err)
	}
	return nil
}

// Get retrieves the value stored under the prefixed key
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("%w: get %s: %v", core.ErrStoreOperation, key, err)
	}
	return value, nil
}

// Delete removes the prefixed key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", core.ErrStoreOperation, key, err)
	}
	return nil
}

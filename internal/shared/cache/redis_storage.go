package cache

import (
	"context"
	"time"

	"session-studio/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStorage adapts a Redis client to fiber's Storage interface so the
// request-rate ceiling is shared across instances instead of living in
// per-process memory.
type RedisStorage struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisClient creates a Redis client with connection timeouts suited to
// request-path lookups.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})
}

// NewRedisStorage creates a fiber Storage backed by the given Redis client
func NewRedisStorage(client *redis.Client, log logger.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		logger: log,
	}
}

// Get retrieves the value for the given key, or nil when the key is absent
func (s *RedisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.Errorf("redis get failed for key %s: %v", key, err)
		return nil, err
	}
	return val, nil
}

// Set stores the value under the given key with an expiration. A zero
// expiration stores the key without TTL.
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if err := s.client.Set(context.Background(), key, val, exp).Err(); err != nil {
		s.logger.Errorf("redis set failed for key %s: %v", key, err)
		return err
	}
	return nil
}

// Delete removes the given key
func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), key).Err()
}

// Reset removes all keys. Used by fiber's limiter on storage reset only, so
// FlushDB is acceptable here.
func (s *RedisStorage) Reset() error {
	return s.client.FlushDB(context.Background()).Err()
}

// Close closes the underlying client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// Ping verifies connectivity to Redis
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

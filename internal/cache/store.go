package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel comparison
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Store is the key-value backend the list cache writes through
type Store interface {
	// Get unmarshals the value at key into dest and reports whether it existed
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value as JSON with a TTL
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePattern removes every key matching a glob pattern and returns how many went
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// RedisStore is a Store backed by Redis
type RedisStore struct {
	rdb       *redis.Client
	scanCount int64
}

// NewRedisStore wraps a connected client
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, scanCount: 100}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// Set sets a value in Redis with a specified TTL
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// DeletePattern walks the keyspace with SCAN so large caches never block Redis
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, pattern, s.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return s.rdb.Del(ctx, keys...).Result()
}

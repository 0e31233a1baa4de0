package db

import (
	"context"                    // Context for Redis operations
	"fmt"                        // Error wrapping
	"hunter_api/internal/config" // Connection settings

	"github.com/redis/go-redis/v9" // Redis client
)

// OpenRedis connects to Redis and checks the connection
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

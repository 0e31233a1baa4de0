package main

import (
	"context"                    // context package is needed for Redis operations
	"hunter_api/internal/api"    // Custom package for API handlers
	"hunter_api/internal/cache"  // List page cache
	"hunter_api/internal/config" // Custom package for configuration
	"hunter_api/internal/db"     // Database and Redis connections
	"hunter_api/internal/tasks"  // Notification queue

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	config.SetupLogging(cfg)

	// Connect to the database
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client shared by the list cache and the job queue
	redisClient, err := db.OpenRedis(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:    conn,                                                               // Entity store
		Lists: cache.NewListCache(cache.NewRedisStore(redisClient), cfg.CacheTTL), // List page cache
		Jobs:  tasks.NewRedisQueue(redisClient, tasks.DefaultQueueKey),            // Notification queue
		Tokens: api.TokenSettings{
			Secret:     cfg.JWTSecret,       // JWT secret key
			AccessTTL:  cfg.AccessTokenTTL,  // Access token lifetime
			RefreshTTL: cfg.RefreshTokenTTL, // Refresh token lifetime
		},
	})

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

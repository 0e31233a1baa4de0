package config

import (
	"fmt"  // Error wrapping
	"time" // Durations for TTLs

	"github.com/caarlos0/env/v11" // Struct-tag environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string `env:"APP_PORT" envDefault:"8000"`      // Application port
	IsProd     bool   `env:"IS_PROD" envDefault:"false"`      // Is production environment
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`     // logrus level name
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`    // mysql or postgres
	DBUser     string `env:"DB_USER"`                         // Database user
	DBPassword string `env:"DB_PASSWORD"`                     // Database password
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`  // Database host
	DBPort     string `env:"DB_PORT"`                         // Database port, driver default when empty
	DBName     string `env:"DB_NAME"`                         // Database name
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"` // postgres only

	JWTSecret       string        `env:"JWT_SECRET"`                         // JWT secret key
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`  // Access token lifetime
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"` // Refresh token lifetime

	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"` // Redis server address
	RedisPass string        `env:"REDIS_PASS"`                             // Redis password
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`                // Redis database number
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"15m"`             // List page lifetime

	MailBackend string `env:"MAIL_BACKEND" envDefault:"console"`             // console or smtp
	SMTPHost    string `env:"SMTP_HOST"`                                     // SMTP server
	SMTPPort    int    `env:"SMTP_PORT" envDefault:"587"`                    // SMTP port
	SMTPUser    string `env:"SMTP_USER"`                                     // SMTP username
	SMTPPass    string `env:"SMTP_PASS"`                                     // SMTP password
	MailFrom    string `env:"MAIL_FROM" envDefault:"noreply@hunter.network"` // Sender address

	WorkerConcurrency int `env:"WORKER_CONCURRENCY" envDefault:"4"` // Job worker goroutines
	JobMaxAttempts    int `env:"JOB_MAX_ATTEMPTS" envDefault:"3"`   // Deliveries before a job is dropped
}

// LoadConfig loads configuration from the environment, reading .env first if present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.MailBackend != "console" && cfg.MailBackend != "smtp" {
		return nil, fmt.Errorf("unsupported MAIL_BACKEND %q", cfg.MailBackend)
	}
	if cfg.IsProd && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	return cfg, nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port, c.DBSSLMode)
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

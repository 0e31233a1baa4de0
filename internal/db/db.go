package db

import (
	"fmt"                        // Error wrapping
	"hunter_api/internal/config" // Connection settings

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM log levels
)

// Options shared by every connection. Foreign keys are not emitted because
// hunters and guilds reference each other; delete policies are applied by the
// handlers inside their transactions.
func Options(isProd bool) *gorm.Config {
	level := logger.Info
	if isProd {
		level = logger.Warn
	}
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(level),
	}
}

// Open connects to the configured database driver
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
	conn, err := gorm.Open(dialector, Options(cfg.IsProd))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	return conn, nil
}

package db

import (
	"hunter_api/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table in dependency order
func Models() []any {
	return []any{
		&domain.Skill{},
		&domain.Guild{},
		&domain.Hunter{},
		&domain.Dungeon{},
		&domain.Raid{},
		&domain.RaidParticipation{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(conn *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and indexes
	if err := conn.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

package main

import (
	"flag"                       // Command line flags
	"hunter_api/internal/config" // Custom import path (Config)
	"hunter_api/internal/db"     // Custom import path (Database)
	"time"                       // Raid dates

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for populating demo data
func main() {
	password := flag.String("password", "test", "password given to every seeded hunter")
	flag.Parse()

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	config.SetupLogging(cfg)

	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Seed(conn, *password, time.Now()); err != nil {
		logrus.Fatalf("failed to seed: %v", err)
	}
}

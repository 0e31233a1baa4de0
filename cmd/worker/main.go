package main

import (
	"context"                    // Cancellation
	"hunter_api/internal/config" // Custom package for configuration
	"hunter_api/internal/db"     // Database and Redis connections
	"hunter_api/internal/tasks"  // Job queue and handlers
	"os"                         // Signals
	"os/signal"                  // Signal handling
	"syscall"                    // SIGTERM

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for the notification worker
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	config.SetupLogging(cfg)

	// Stop taking jobs on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	redisClient, err := db.OpenRedis(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	var mailer tasks.Mailer = tasks.ConsoleMailer{From: cfg.MailFrom}
	if cfg.MailBackend == "smtp" {
		mailer, err = tasks.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
		if err != nil {
			logrus.Fatalf("failed to configure SMTP: %v", err)
		}
	}

	queue := tasks.NewRedisQueue(redisClient, tasks.DefaultQueueKey)
	worker := tasks.NewWorker(queue, tasks.NewNotifier(conn, mailer, queue).Handlers(), cfg.WorkerConcurrency, cfg.JobMaxAttempts)
	worker.Run(ctx)
}

package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"wheelshare-backend/internal/config"
	"wheelshare-backend/internal/jobs"
	"wheelshare-backend/internal/logger"
	"wheelshare-backend/internal/repository/postgres"
	"wheelshare-backend/internal/scheduler"
	"wheelshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('expire-lapsed-payments', 'complete-elapsed-reservations', 'all')")
	flag.Parse()

	godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting WheelShare Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Jobs notify through the persisted feed plus email when configured;
	// SMS and push stay on the interactive server.
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid not configured, email delivery disabled")
	}
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSvc, nil, nil)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.ReservationRepository, notifier, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Catch up on anything that lapsed while the runner was down, then hand
	// off to the cron schedule.
	jobRunner.RunAll()

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	cronScheduler.Stop()
}

func runJobOnce(jr *jobs.JobRunner, name string) {
	switch name {
	case "expire-lapsed-payments":
		jr.ExpireLapsedPayments()
	case "complete-elapsed-reservations":
		jr.CompleteElapsedReservations()
	case "all":
		jr.RunAll()
	default:
		logger.Error("Unknown job name", "job", name)
		os.Exit(1)
	}
}

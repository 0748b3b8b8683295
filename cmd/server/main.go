package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"wheelshare-backend/internal/api"
	"wheelshare-backend/internal/config"
	"wheelshare-backend/internal/jobs"
	"wheelshare-backend/internal/logger"
	"wheelshare-backend/internal/repository/postgres"
	"wheelshare-backend/internal/security"
	"wheelshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting WheelShare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize delivery channels
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid not configured, email delivery disabled")
	}

	var smsSvc service.SMSService
	if cfg.Twilio.AccountSID != "" {
		smsSvc = service.NewSMSService(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromPhone)
	} else {
		logger.Warn("Twilio not configured, SMS delivery disabled")
	}

	var pushSvc service.PushService
	if cfg.Firebase.CredentialsFile != "" {
		pushSvc, err = service.NewPushService(context.Background(), cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize push service", "error", err)
			log.Fatalf("Failed to initialize push service: %v", err)
		}
	} else {
		logger.Warn("Firebase not configured, push delivery disabled")
	}

	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSvc, smsSvc, pushSvc)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	reservationSvc := service.NewReservationService(
		store.ReservationRepository,
		store.VehicleRepository,
		store.RideRepository,
		notifier,
		cfg.Booking,
	)
	catalogSvc := service.NewCatalogService(
		store.VehicleRepository,
		store.RideRepository,
		store.ReservationRepository,
		notifier,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Sweep anything that lapsed while the process was down before taking
	// traffic, so no stale AWAITING_PAYMENT rows hold capacity at startup.
	jobs.NewJobRunner(store.ReservationRepository, notifier, cfg).RunAll()

	// Initialize HTTP API
	router := api.NewRouter(
		api.NewAuthHandler(authSvc),
		api.NewReservationHandler(reservationSvc),
		api.NewCatalogHandler(catalogSvc),
		api.NewNotificationHandler(noteSvc),
		api.NewAuthMiddleware(tokenManager),
	)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mobility-rental-backend/internal/config"
	"mobility-rental-backend/internal/jobs"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository/postgres"
	"mobility-rental-backend/internal/scheduler"
	"mobility-rental-backend/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file (empty for environment only)")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'flag-open-rentals', 'archive-day-report', 'all-nightly')")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting mobility rental cronjob runner...", "log_level", cfg.Log.Level, "timezone", cfg.App.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	clock := service.NewClock(cfg.Location())

	// Initialize Services
	reservationSvc := service.NewReservationService(store, clock)
	rentalSvc := service.NewRentalService(store, clock)

	jobServices := &jobs.Services{
		Rental: rentalSvc,
		Report: service.NewReportService(reservationSvc, rentalSvc),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, clock, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "flag-open-rentals":
		jobRunner.FlagOpenRentals()
	case "archive-day-report":
		jobRunner.ArchiveDayReport()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - flag-open-rentals\n")
		fmt.Printf("  - archive-day-report\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}

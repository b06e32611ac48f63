package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "mobility-rental-backend/internal/api/http"
	"mobility-rental-backend/internal/config"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository/postgres"
	"mobility-rental-backend/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file (empty for environment only)")
	migrate := flag.Bool("migrate", false, "Apply pending database migrations before serving")
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
	logger.Info("Starting mobility rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "timezone", cfg.App.Timezone)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if *migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	store := postgres.NewStore(db)
	clock := service.NewClock(cfg.Location())

	// Initialize Services
	inventorySvc := service.NewInventoryService(store)
	reservationSvc := service.NewReservationService(store, clock)
	rentalSvc := service.NewRentalService(store, clock)
	reportSvc := service.NewReportService(reservationSvc, rentalSvc)

	router := httpapi.NewRouter(httpapi.Services{
		Inventory:    inventorySvc,
		Reservations: reservationSvc,
		Rentals:      rentalSvc,
		Reports:      reportSvc,
		Clock:        clock,
		Store:        store,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

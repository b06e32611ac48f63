package jobs

import (
	"context"
	"time"

	"mobility-rental-backend/internal/config"
	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	clock    service.Clock
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental service.RentalService
	Report service.ReportService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, clock service.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		clock:    clock,
		config:   cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err := jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// eventDay returns today's date in the business timezone and whether the
// event runs on it.
func (jr *JobRunner) eventDay() (string, bool) {
	today := jr.clock.Current().Format(domain.DateLayout)
	return today, today == jr.clock.DefaultDate()
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.FlagOpenRentals()
	jr.ArchiveDayReport()
}

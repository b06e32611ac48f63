package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mobility-rental-backend/internal/logger"
)

// ArchiveDayReport writes today's reservations and rentals workbook into the
// configured report directory.
func (jr *JobRunner) ArchiveDayReport() {
	jr.runWithRecovery("ArchiveDayReport", func(ctx context.Context) error {
		_, err := jr.archiveDayReport(ctx)
		return err
	})
}

func (jr *JobRunner) archiveDayReport(ctx context.Context) (string, error) {
	date, ok := jr.eventDay()
	if !ok {
		logger.Debug("Not an event day, skipping report archive", "date", date)
		return "", nil
	}

	dir := jr.config.Scheduler.ReportDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// A failed export leaves any earlier archive of the day in place.
	tmp, err := os.CreateTemp(dir, ".rentals-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := jr.services.Report.ExportDay(ctx, date, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("rentals-%s.xlsx", date))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store report: %w", err)
	}
	logger.Info("Archived day report", "date", date, "path", path)
	return path, nil
}

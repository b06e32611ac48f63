package jobs

import (
	"context"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
)

// FlagOpenRentals logs every rental of today that has not been returned yet.
func (jr *JobRunner) FlagOpenRentals() {
	jr.runWithRecovery("FlagOpenRentals", func(ctx context.Context) error {
		_, err := jr.flagOpenRentals(ctx)
		return err
	})
}

func (jr *JobRunner) flagOpenRentals(ctx context.Context) (int, error) {
	date, ok := jr.eventDay()
	if !ok {
		logger.Debug("Not an event day, skipping open rental check", "date", date)
		return 0, nil
	}

	open, err := jr.services.Rental.ListByDate(ctx, domain.RentalFilter{Date: date, InProgressOnly: true})
	if err != nil {
		return 0, err
	}

	for _, r := range open {
		logger.Warn("Rental still open",
			"rental_id", r.ID,
			"device_id", r.DeviceID,
			"device_type", r.DeviceType,
			"pickup_location", r.PickupLocation,
			"pickup_time", r.PickupTime,
			"name", r.Name,
			"phone_number", r.PhoneNumber)
	}
	logger.Info("Checked open rentals", "date", date, "count", len(open))
	return len(open), nil
}

package service

import (
	"context"
	"errors"
	"io"

	"mobility-rental-backend/internal/domain"
)

type InventoryService interface {
	ListAll(ctx context.Context) ([]domain.Device, error)
	ListAvailable(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error)
	Insert(ctx context.Context, devices []domain.Device) error
	Upsert(ctx context.Context, devices []domain.Device) error
	ReplaceAll(ctx context.Context, devices []domain.Device) error
	UpdateLocations(ctx context.Context, deviceIDs []string, location domain.Location) error
}

type ReservationService interface {
	Create(ctx context.Context, r domain.NewReservation) (string, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	ListByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error)
	Update(ctx context.Context, r domain.Reservation) error
}

type RentalService interface {
	StartRental(ctx context.Context, r domain.Rental) (string, error)
	ChangeDevice(ctx context.Context, c domain.ChangeDeviceInfo) error
	CompleteRental(ctx context.Context, c domain.CompletedRental) error
	Get(ctx context.Context, id string) (*domain.Rental, error)
	ListByDate(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
}

type ReportService interface {
	// ExportDay writes an xlsx workbook with the reservations and rentals of date.
	ExportDay(ctx context.Context, date string, w io.Writer) error
}

type ImportService interface {
	// ImportInventory reads devices from an xlsx sheet and applies them with mode.
	ImportInventory(ctx context.Context, r io.Reader, mode ImportMode) (int, error)
}

// isExpected reports whether err is a business outcome rather than a fault.
func isExpected(err error) bool {
	var conflict *domain.ConflictError
	var notFound *domain.NotFoundError
	var invalid *domain.ValidationError
	return errors.As(err, &conflict) || errors.As(err, &notFound) || errors.As(err, &invalid)
}

package repository

import (
	"context"

	"mobility-rental-backend/internal/domain"
)

type DeviceRepository interface {
	ListAll(ctx context.Context) ([]domain.Device, error)
	ListAvailableIDs(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error)
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	Insert(ctx context.Context, devices []domain.Device) error
	Upsert(ctx context.Context, devices []domain.Device) error
	DeleteAll(ctx context.Context) error

	// UpdateLocations moves devices and returns the ids that were found.
	UpdateLocations(ctx context.Context, ids []string, location domain.Location) ([]string, error)

	// UpdateStatusIf moves a device to next only while it still holds expected.
	// A nil location keeps the current one. Zero rows means the device is
	// missing or no longer in the expected status.
	UpdateStatusIf(ctx context.Context, id string, expected, next domain.DeviceStatus, location *domain.Location) (int64, error)

	// UpdateStatus sets the status whatever the device currently holds.
	UpdateStatus(ctx context.Context, id string, next domain.DeviceStatus, location *domain.Location) error
}

type ReservationRepository interface {
	// NextSequence returns the next free sequence number for an id prefix.
	NextSequence(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error)
	ListByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error)
	Update(ctx context.Context, r *domain.Reservation) error
	BindRental(ctx context.Context, id, rentalID string, status domain.ReservationStatus) error
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error
}

type RentalRepository interface {
	NextSequence(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, r *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Rental, error)
	ListByDate(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	UpdateDevice(ctx context.Context, id, deviceID string) error
	Complete(ctx context.Context, c *domain.CompletedRental) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Devices() DeviceRepository
	Reservations() ReservationRepository
	Rentals() RentalRepository
}

// Store hands out pool-bound repositories for reads and runs writes in a
// transaction. fn receives repositories bound to the transaction; a non-nil
// error from fn rolls everything back.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}

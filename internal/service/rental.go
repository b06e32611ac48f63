package service

import (
	"context"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository"
	"mobility-rental-backend/internal/utils"
)

type rentalService struct {
	store repository.Store
	clock Clock
}

func NewRentalService(store repository.Store, clock Clock) RentalService {
	return &rentalService{store: store, clock: clock}
}

// StartRental records a pickup. In one transaction it inserts the rental,
// binds the reservation (if any) and marks the device Rented.
func (s *rentalService) StartRental(ctx context.Context, r domain.Rental) (string, error) {
	method := "RentalService.StartRental"
	logger.EnterMethod(method, "device_id", r.DeviceID, "date", r.Date)

	r.Normalize()
	r.ReturnLocation, r.ReturnTime, r.ReturnStaffName, r.ReturnSignature = nil, nil, nil, nil
	now := s.clock.Current()
	if r.PickupTime.IsZero() {
		r.PickupTime = now
	}
	if r.Date == "" {
		r.Date = utils.DefaultDate(now)
	}
	if err := r.Validate(); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return "", err
	}
	if err := utils.CheckPayment(&r); err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return "", err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var reservation *domain.Reservation
		var reservationStatus domain.ReservationStatus
		if r.ReservationID != nil {
			res, err := repos.Reservations().GetForUpdate(ctx, *r.ReservationID)
			if err != nil {
				return err
			}
			if res.RentalID != nil {
				return domain.NewConflictError("reservation %s is already bound to rental %s", res.ID, *res.RentalID)
			}
			if reservationStatus, err = domain.NextReservationStatus(domain.EventStartRental, res.Status); err != nil {
				return err
			}
			reservation = res
		}

		if r.ID == "" {
			id, err := nextID(ctx, repos.Rentals(), r.DeviceType, r.Date)
			if err != nil {
				return err
			}
			r.ID = id
		}
		if err := repos.Rentals().Create(ctx, &r); err != nil {
			return err
		}

		if reservation != nil {
			if err := repos.Reservations().BindRental(ctx, reservation.ID, r.ID, reservationStatus); err != nil {
				return err
			}
		}

		return moveDevice(ctx, repos.Devices(), r.DeviceID, domain.DeviceStatusRented, nil)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return "", err
	}

	logger.ExitMethod(method, "rental_id", r.ID)
	return r.ID, nil
}

// moveDevice performs a guarded status change. Zero affected rows means the
// device is missing or was not in the required status.
func moveDevice(ctx context.Context, devices repository.DeviceRepository, id string, next domain.DeviceStatus, location *domain.Location) error {
	expected, ok := domain.RequiredDeviceStatus(next)
	if !ok {
		return domain.NewConflictError("device %s cannot be moved to %s by a rental", id, next)
	}
	n, err := devices.UpdateStatusIf(ctx, id, expected, next, location)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	d, err := devices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.NewConflictError("device %s is %s, expected %s", id, d.Status, expected)
}

// ChangeDevice swaps the device of an open rental.
func (s *rentalService) ChangeDevice(ctx context.Context, c domain.ChangeDeviceInfo) error {
	method := "RentalService.ChangeDevice"
	logger.EnterMethod(method, "rental_id", c.RentalID, "old_device_id", c.OldDeviceID, "new_device_id", c.NewDeviceID)

	c.Normalize()
	if err := c.Validate(); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, err := repos.Rentals().GetForUpdate(ctx, c.RentalID)
		if err != nil {
			return err
		}
		if _, err := domain.NextRentalState(domain.EventChangeDevice, rental.State()); err != nil {
			return err
		}
		if rental.DeviceType != c.DeviceType {
			return domain.NewValidationError("device_type", "rental %s is for a %s", rental.ID, rental.DeviceType)
		}
		if rental.DeviceID != c.OldDeviceID {
			return domain.NewConflictError("rental %s is bound to device %s, not %s", rental.ID, rental.DeviceID, c.OldDeviceID)
		}

		location := c.Location
		if err := moveDevice(ctx, repos.Devices(), c.NewDeviceID, domain.DeviceStatusRented, &location); err != nil {
			return err
		}
		if err := moveDevice(ctx, repos.Devices(), c.OldDeviceID, domain.DeviceStatusAvailable, &location); err != nil {
			return err
		}
		return repos.Rentals().UpdateDevice(ctx, rental.ID, c.NewDeviceID)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return err
	}

	logger.ExitMethod(method, "rental_id", c.RentalID)
	return nil
}

// CompleteRental records a return: it closes the rental, completes the bound
// reservation and makes the device Available at the return location.
func (s *rentalService) CompleteRental(ctx context.Context, c domain.CompletedRental) error {
	method := "RentalService.CompleteRental"
	logger.EnterMethod(method, "rental_id", c.ID, "return_location", c.ReturnLocation)

	c.Normalize()
	if c.ReturnTime.IsZero() {
		c.ReturnTime = s.clock.Current()
	}
	if err := c.Validate(); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, err := repos.Rentals().GetForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		if _, err := domain.NextRentalState(domain.EventCompleteRental, rental.State()); err != nil {
			return err
		}
		if c.DeviceID != "" && c.DeviceID != rental.DeviceID {
			return domain.NewValidationError("device_id", "rental %s is bound to device %s", rental.ID, rental.DeviceID)
		}

		if err := repos.Rentals().Complete(ctx, &c); err != nil {
			return err
		}

		if rental.ReservationID != nil {
			res, err := repos.Reservations().GetForUpdate(ctx, *rental.ReservationID)
			if err != nil {
				return err
			}
			// Staff may have cancelled or closed the reservation by hand; keep their status.
			if !res.Status.Finished() {
				next, err := domain.NextReservationStatus(domain.EventCompleteRental, res.Status)
				if err != nil {
					return err
				}
				if err := repos.Reservations().UpdateStatus(ctx, res.ID, next); err != nil {
					return err
				}
			}
		}

		// The device is back in hand, so it is released whatever status staff set meanwhile.
		location := c.ReturnLocation
		return repos.Devices().UpdateStatus(ctx, rental.DeviceID, domain.DeviceStatusAvailable, &location)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return err
	}

	logger.ExitMethod(method, "rental_id", c.ID)
	return nil
}

func (s *rentalService) Get(ctx context.Context, id string) (*domain.Rental, error) {
	rental, err := s.store.Rentals().GetByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	s.clock.localizeRental(rental)
	return rental, nil
}

func (s *rentalService) ListByDate(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	if filter.Date == "" {
		filter.Date = s.clock.DefaultDate()
	}
	if err := validateListFilter(filter.Date, filter.DeviceType); err != nil {
		return nil, err
	}
	rentals, err := s.store.Rentals().ListByDate(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range rentals {
		s.clock.localizeRental(&rentals[i])
	}
	return rentals, nil
}

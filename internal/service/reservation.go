package service

import (
	"context"
	"fmt"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository"
	"mobility-rental-backend/internal/utils"
)

type reservationService struct {
	store repository.Store
	clock Clock
}

func NewReservationService(store repository.Store, clock Clock) ReservationService {
	return &reservationService{store: store, clock: clock}
}

func (s *reservationService) Create(ctx context.Context, nr domain.NewReservation) (string, error) {
	method := "ReservationService.Create"
	logger.EnterMethod(method, "date", nr.Date, "device_type", nr.DeviceType)

	nr.Normalize()
	if nr.Date == "" {
		nr.Date = utils.DefaultNewReservationDate(s.clock.Current())
	}
	if err := nr.Validate(); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return "", err
	}
	status, err := domain.DefaultReservationStatus(nr.DeviceType)
	if err != nil {
		logger.ExitMethodWithError(method, err, false)
		return "", err
	}

	res := &domain.Reservation{
		Date:        nr.Date,
		DeviceType:  nr.DeviceType,
		Name:        nr.Name,
		PhoneNumber: nr.PhoneNumber,
		Location:    nr.Location,
		PickupTime:  nr.PickupTime,
		Status:      status,
		Notes:       nr.Notes,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		id, err := nextID(ctx, repos.Reservations(), res.DeviceType, res.Date)
		if err != nil {
			return err
		}
		res.ID = id
		return repos.Reservations().Create(ctx, res)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return "", err
	}

	logger.ExitMethod(method, "reservation_id", res.ID, "status", res.Status)
	return res.ID, nil
}

type sequencer interface {
	NextSequence(ctx context.Context, prefix string) (int, error)
}

// nextID allocates the next reservation or rental id for a device type and date.
func nextID(ctx context.Context, seq sequencer, deviceType domain.DeviceType, date string) (string, error) {
	prefix, err := domain.IDPrefix(deviceType, date)
	if err != nil {
		return "", err
	}
	n, err := seq.NextSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to allocate id for %s: %w", prefix, err)
	}
	return domain.FormatID(prefix, n)
}

func (s *reservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := s.store.Reservations().GetByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	s.clock.localizeReservation(res)
	return res, nil
}

func (s *reservationService) ListByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	if filter.Date == "" {
		filter.Date = s.clock.DefaultDate()
	}
	if err := validateListFilter(filter.Date, filter.DeviceType); err != nil {
		return nil, err
	}
	reservations, err := s.store.Reservations().ListByDate(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		s.clock.localizeReservation(&reservations[i])
	}
	return reservations, nil
}

func validateListFilter(date string, deviceType *domain.DeviceType) error {
	var fields []domain.FieldError
	if _, err := domain.ParseDate(date); err != nil {
		fields = append(fields, domain.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if deviceType != nil && !deviceType.Valid() {
		fields = append(fields, domain.FieldError{Field: "device_type", Message: fmt.Sprintf("must be one of %v", domain.DeviceTypes)})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *reservationService) CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error) {
	if date == "" {
		date = s.clock.DefaultDate()
	}
	if err := validateListFilter(date, nil); err != nil {
		return 0, err
	}
	if err := validateTypeAndLocation(deviceType, location); err != nil {
		return 0, err
	}
	return s.store.Reservations().CountByDate(ctx, date, deviceType, location)
}

// Update applies an administrative edit. Status may be overwritten freely;
// date and device type are fixed by the reservation id.
func (s *reservationService) Update(ctx context.Context, r domain.Reservation) error {
	method := "ReservationService.Update"
	logger.EnterMethod(method, "reservation_id", r.ID, "status", r.Status)

	r.Normalize()
	if err := r.Validate(); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Reservations().GetForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		if existing.Date != r.Date {
			return domain.NewValidationError("date", "cannot be changed from %s", existing.Date)
		}
		if existing.DeviceType != r.DeviceType {
			return domain.NewValidationError("device_type", "cannot be changed from %s", existing.DeviceType)
		}
		return repos.Reservations().Update(ctx, &r)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return err
	}

	logger.ExitMethod(method, "reservation_id", r.ID)
	return nil
}

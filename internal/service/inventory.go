package service

import (
	"context"
	"fmt"
	"strings"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository"
)

type inventoryService struct {
	store repository.Store
}

func NewInventoryService(store repository.Store) InventoryService {
	return &inventoryService{store: store}
}

func (s *inventoryService) ListAll(ctx context.Context) ([]domain.Device, error) {
	return s.store.Devices().ListAll(ctx)
}

func (s *inventoryService) ListAvailable(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error) {
	if err := validateTypeAndLocation(deviceType, location); err != nil {
		return nil, err
	}
	return s.store.Devices().ListAvailableIDs(ctx, deviceType, location)
}

func validateTypeAndLocation(deviceType domain.DeviceType, location domain.Location) error {
	var fields []domain.FieldError
	if !deviceType.Valid() {
		fields = append(fields, domain.FieldError{Field: "device_type", Message: fmt.Sprintf("must be one of %v", domain.DeviceTypes)})
	}
	if !validLocation(location) {
		fields = append(fields, domain.FieldError{Field: "location", Message: fmt.Sprintf("must be one of %v", domain.Locations)})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validLocation(l domain.Location) bool {
	for _, loc := range domain.Locations {
		if loc == l {
			return true
		}
	}
	return false
}

// prepareDevices normalizes and validates a batch before any store call.
func prepareDevices(devices []domain.Device) ([]domain.Device, error) {
	batch := make([]domain.Device, len(devices))
	for i, d := range devices {
		d.Normalize()
		batch[i] = d
	}
	if err := domain.ValidateDevices(batch); err != nil {
		return nil, err
	}
	if dups := domain.DuplicateDeviceIDs(batch); len(dups) > 0 {
		return nil, domain.NewConflictError("duplicate device ids in request: %s", strings.Join(dups, ", "))
	}
	return batch, nil
}

func (s *inventoryService) Insert(ctx context.Context, devices []domain.Device) error {
	return s.write(ctx, "InventoryService.Insert", devices, func(ctx context.Context, repos repository.Repositories, batch []domain.Device) error {
		return repos.Devices().Insert(ctx, batch)
	})
}

func (s *inventoryService) Upsert(ctx context.Context, devices []domain.Device) error {
	return s.write(ctx, "InventoryService.Upsert", devices, func(ctx context.Context, repos repository.Repositories, batch []domain.Device) error {
		return repos.Devices().Upsert(ctx, batch)
	})
}

func (s *inventoryService) ReplaceAll(ctx context.Context, devices []domain.Device) error {
	return s.write(ctx, "InventoryService.ReplaceAll", devices, func(ctx context.Context, repos repository.Repositories, batch []domain.Device) error {
		if err := repos.Devices().DeleteAll(ctx); err != nil {
			return err
		}
		return repos.Devices().Insert(ctx, batch)
	})
}

func (s *inventoryService) write(ctx context.Context, method string, devices []domain.Device,
	fn func(ctx context.Context, repos repository.Repositories, batch []domain.Device) error) error {
	logger.EnterMethod(method, "count", len(devices))

	batch, err := prepareDevices(devices)
	if err == nil {
		err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return fn(ctx, repos, batch)
		})
	}
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return err
	}

	logger.ExitMethod(method, "count", len(batch))
	return nil
}

func (s *inventoryService) UpdateLocations(ctx context.Context, deviceIDs []string, location domain.Location) error {
	method := "InventoryService.UpdateLocations"
	logger.EnterMethod(method, "count", len(deviceIDs), "location", location)

	ids := make([]string, 0, len(deviceIDs))
	var fields []domain.FieldError
	if len(deviceIDs) == 0 {
		fields = append(fields, domain.FieldError{Field: "device_ids", Message: "at least one device id is required"})
	}
	for i, id := range deviceIDs {
		id = domain.NormalizeID(id)
		if !domain.DeviceIDPattern.MatchString(id) {
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("device_ids[%d]", i), Message: "must be one letter followed by two digits"})
		}
		ids = append(ids, id)
	}
	if !validLocation(location) {
		fields = append(fields, domain.FieldError{Field: "location", Message: fmt.Sprintf("must be one of %v", domain.Locations)})
	}
	if len(fields) > 0 {
		err := &domain.ValidationError{Fields: fields}
		logger.ExitMethodWithError(method, err, true)
		return err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		updated, err := repos.Devices().UpdateLocations(ctx, ids, location)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(updated))
		for _, id := range updated {
			found[id] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return domain.NewNotFoundError("device", strings.Join(missing, ", "))
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, isExpected(err))
		return err
	}

	logger.ExitMethod(method)
	return nil
}

package http

import (
	"context"
	"io"

	"mobility-rental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockInventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) ListAll(ctx context.Context) ([]domain.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Device), args.Error(1)
}
func (m *MockInventoryService) ListAvailable(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error) {
	args := m.Called(ctx, deviceType, location)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockInventoryService) Insert(ctx context.Context, devices []domain.Device) error {
	args := m.Called(ctx, devices)
	return args.Error(0)
}
func (m *MockInventoryService) Upsert(ctx context.Context, devices []domain.Device) error {
	args := m.Called(ctx, devices)
	return args.Error(0)
}
func (m *MockInventoryService) ReplaceAll(ctx context.Context, devices []domain.Device) error {
	args := m.Called(ctx, devices)
	return args.Error(0)
}
func (m *MockInventoryService) UpdateLocations(ctx context.Context, deviceIDs []string, location domain.Location) error {
	args := m.Called(ctx, deviceIDs, location)
	return args.Error(0)
}

// MockReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, r domain.NewReservation) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}
func (m *MockReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ListByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationService) CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error) {
	args := m.Called(ctx, date, deviceType, location)
	return args.Int(0), args.Error(1)
}
func (m *MockReservationService) Update(ctx context.Context, r domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockRentalService
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) StartRental(ctx context.Context, r domain.Rental) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}
func (m *MockRentalService) ChangeDevice(ctx context.Context, c domain.ChangeDeviceInfo) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockRentalService) CompleteRental(ctx context.Context, c domain.CompletedRental) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockRentalService) Get(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListByDate(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ExportDay(ctx context.Context, date string, w io.Writer) error {
	args := m.Called(ctx, date, w)
	if body, ok := args.Get(0).([]byte); ok {
		w.Write(body)
	}
	return args.Error(1)
}

// MockPinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

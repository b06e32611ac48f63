package jobs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mobility-rental-backend/internal/config"
	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) StartRental(ctx context.Context, r domain.Rental) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}
func (m *MockRentalService) ChangeDevice(ctx context.Context, c domain.ChangeDeviceInfo) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockRentalService) CompleteRental(ctx context.Context, c domain.CompletedRental) error {
	return m.Called(ctx, c).Error(0)
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

type runnerFixture struct {
	runner  *JobRunner
	rentals *MockRentalService
	reports *MockReportService
	dir     string
}

func newRunner(t *testing.T, now time.Time) *runnerFixture {
	t.Helper()
	f := &runnerFixture{
		rentals: new(MockRentalService),
		reports: new(MockReportService),
		dir:     filepath.Join(t.TempDir(), "reports"),
	}
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		FlagOpenRentalsCron:  "0 0 20 * * *",
		ArchiveDayReportCron: "0 30 23 * * *",
		ReportDir:            f.dir,
	}}
	clock := service.Clock{Location: time.UTC, Now: func() time.Time { return now }}
	f.runner = NewJobRunner(&Services{Rental: f.rentals, Report: f.reports}, clock, cfg)
	return f
}

var (
	eventDay    = time.Date(2026, time.August, 25, 18, 0, 0, 0, time.UTC)
	afterEvent  = time.Date(2026, time.October, 1, 18, 0, 0, 0, time.UTC)
	openFilter  = domain.RentalFilter{Date: "2026-08-25", InProgressOnly: true}
	reportBytes = []byte("workbook")
)

func TestFlagOpenRentals(t *testing.T) {
	t.Run("Counts rentals still out", func(t *testing.T) {
		f := newRunner(t, eventDay)
		f.rentals.On("ListByDate", mock.Anything, openFilter).Return([]domain.Rental{
			{ID: "W0825001", DeviceID: "W01", DeviceType: domain.DeviceTypeWheelchair},
			{ID: "S0825003", DeviceID: "S07", DeviceType: domain.DeviceTypeScooter},
		}, nil)

		n, err := f.runner.flagOpenRentals(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		f.rentals.AssertExpectations(t)
	})

	t.Run("Skips days outside the event", func(t *testing.T) {
		f := newRunner(t, afterEvent)

		n, err := f.runner.flagOpenRentals(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		f.rentals.AssertNotCalled(t, "ListByDate", mock.Anything, mock.Anything)
	})

	t.Run("Propagates listing errors", func(t *testing.T) {
		f := newRunner(t, eventDay)
		f.rentals.On("ListByDate", mock.Anything, openFilter).Return([]domain.Rental(nil), errors.New("db down"))

		_, err := f.runner.flagOpenRentals(context.Background())
		assert.EqualError(t, err, "db down")
	})

	t.Run("Recovers from panics", func(t *testing.T) {
		f := newRunner(t, eventDay)
		f.rentals.On("ListByDate", mock.Anything, openFilter).Run(func(mock.Arguments) {
			panic("boom")
		})

		assert.NotPanics(t, f.runner.FlagOpenRentals)
	})
}

func TestArchiveDayReport(t *testing.T) {
	t.Run("Writes the day workbook", func(t *testing.T) {
		f := newRunner(t, eventDay)
		f.reports.On("ExportDay", mock.Anything, "2026-08-25", mock.Anything).Return(reportBytes, nil)

		path, err := f.runner.archiveDayReport(context.Background())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.dir, "rentals-2026-08-25.xlsx"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, reportBytes, data)

		entries, err := os.ReadDir(f.dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Failed export keeps the previous archive", func(t *testing.T) {
		f := newRunner(t, eventDay)
		require.NoError(t, os.MkdirAll(f.dir, 0o755))
		previous := filepath.Join(f.dir, "rentals-2026-08-25.xlsx")
		require.NoError(t, os.WriteFile(previous, []byte("earlier"), 0o644))
		f.reports.On("ExportDay", mock.Anything, "2026-08-25", mock.Anything).Return([]byte("partial"), errors.New("export failed"))

		_, err := f.runner.archiveDayReport(context.Background())
		assert.EqualError(t, err, "export failed")

		data, err := os.ReadFile(previous)
		require.NoError(t, err)
		assert.Equal(t, "earlier", string(data))
		entries, err := os.ReadDir(f.dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Skips days outside the event", func(t *testing.T) {
		f := newRunner(t, afterEvent)

		path, err := f.runner.archiveDayReport(context.Background())
		require.NoError(t, err)
		assert.Empty(t, path)
		f.reports.AssertNotCalled(t, "ExportDay", mock.Anything, mock.Anything, mock.Anything)
		assert.NoDirExists(t, f.dir)
	})
}

func TestRunAllNightlyJobs(t *testing.T) {
	f := newRunner(t, eventDay)
	f.rentals.On("ListByDate", mock.Anything, openFilter).Return([]domain.Rental{}, nil)
	f.reports.On("ExportDay", mock.Anything, "2026-08-25", mock.Anything).Return(reportBytes, nil)

	f.runner.RunAllNightlyJobs()

	f.rentals.AssertExpectations(t)
	f.reports.AssertExpectations(t)
	assert.FileExists(t, filepath.Join(f.dir, "rentals-2026-08-25.xlsx"))
}

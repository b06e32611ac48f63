package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same pickup run against the postgres store: when the device turns out
// to be taken, the transaction is rolled back and never committed.
func TestRentalService_StartRental_RollsBackTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewRentalService(postgres.NewStore(db), fixedClock(testNow))
	pickup := time.Date(2026, time.August, 25, 14, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id = \\$1 FOR UPDATE").
		WithArgs("W0825001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "date", "device_type", "name", "phone_number", "location",
			"pickup_time", "status", "device_id", "rental_id", "notes",
		}).AddRow("W0825001", "2026-08-25", "Wheelchair", "Jane Smith", "416-555-0100", "PG",
			pickup, "Reserved", nil, nil, "N/A"))
	mock.ExpectQuery("FROM rentals WHERE id LIKE \\$1").
		WithArgs("W0825%").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectExec("INSERT INTO rentals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reservations SET rental_id = \\$1").
		WithArgs("W0825001", "Picked Up", "W0825001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices SET status = \\$1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM devices WHERE id = \\$1").
		WithArgs("W01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "status", "location"}).
			AddRow("W01", "Wheelchair", "Rented", "PG"))
	mock.ExpectRollback()

	r := walkIn("W01")
	resID := "W0825001"
	r.ReservationID = &resID
	_, err = svc.StartRental(context.Background(), r)

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "device W01 is Rented, expected Available", conflict.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// openRentalRow is a walk-in rental still out on deviceID.
func openRentalRow(id, deviceID string) *sqlmock.Rows {
	pickup := time.Date(2026, time.August, 25, 14, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "reservation_id", "date", "device_type", "device_id", "pickup_location", "pickup_time",
		"name", "phone_number", "address", "city", "province", "postal_code", "country",
		"deposit_payment_method", "deposit_payment_amount", "fee_payment_method", "fee_payment_amount",
		"staff_name", "signature", "items_left_behind", "notes", "return_location", "return_time",
		"return_staff_name", "return_signature",
	}).AddRow(id, nil, "2026-08-25", "Wheelchair", deviceID, "PG", pickup,
		"Sam Lee", "647-555-0199", "210 Princes Blvd", "Toronto", "ON", nil, "Canada",
		"Cash", 50, "Cash", 20, "Alex Morgan", signature, "{}", "N/A", nil, nil, nil, nil)
}

// Both device moves succeed but repointing the rental fails: nothing commits.
func TestRentalService_ChangeDevice_RollsBackTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewRentalService(postgres.NewStore(db), fixedClock(testNow))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rentals WHERE id = \\$1 FOR UPDATE").
		WithArgs("W0825001").
		WillReturnRows(openRentalRow("W0825001", "W01"))
	mock.ExpectExec("UPDATE devices SET status = \\$1").
		WithArgs("Rented", "BLC", "W02", "Available").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices SET status = \\$1").
		WithArgs("Available", "BLC", "W01", "Rented").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rentals SET device_id = \\$1").
		WithArgs("W02", "W0825001").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = svc.ChangeDevice(context.Background(), domain.ChangeDeviceInfo{
		RentalID:    "W0825001",
		OldDeviceID: "W01",
		NewDeviceID: "W02",
		DeviceType:  domain.DeviceTypeWheelchair,
		Location:    domain.LocationBLC,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalService_CompleteRental_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewRentalService(postgres.NewStore(db), fixedClock(testNow))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rentals WHERE id = \\$1 FOR UPDATE").
		WithArgs("W0825001").
		WillReturnRows(openRentalRow("W0825001", "W01"))
	mock.ExpectExec("UPDATE rentals SET return_location = \\$1").
		WithArgs("BLC", sqlmock.AnyArg(), "Chris Park", signature, "W0825001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices SET status = \\$1, location = COALESCE\\(\\$2, location\\) WHERE id = \\$3$").
		WithArgs("Available", "BLC", "W01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = svc.CompleteRental(context.Background(), returnOf("W0825001"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type rentalRepository struct {
	q querier
}

var rentalColumns = []string{
	"id", "reservation_id", "to_char(date, 'YYYY-MM-DD')", "device_type", "device_id",
	"pickup_location", "pickup_time", "name", "phone_number", "address", "city",
	"province", "postal_code", "country", "deposit_payment_method", "deposit_payment_amount",
	"fee_payment_method", "fee_payment_amount", "staff_name", "signature",
	"items_left_behind", "notes", "return_location", "return_time", "return_staff_name",
	"return_signature",
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var items pq.StringArray
	err := row.Scan(&rt.ID, &rt.ReservationID, &rt.Date, &rt.DeviceType, &rt.DeviceID,
		&rt.PickupLocation, &rt.PickupTime, &rt.Name, &rt.PhoneNumber, &rt.Address, &rt.City,
		&rt.Province, &rt.PostalCode, &rt.Country, &rt.DepositPaymentMethod, &rt.DepositPaymentAmount,
		&rt.FeePaymentMethod, &rt.FeePaymentAmount, &rt.StaffName, &rt.Signature,
		&items, &rt.Notes, &rt.ReturnLocation, &rt.ReturnTime, &rt.ReturnStaffName,
		&rt.ReturnSignature)
	if err != nil {
		return nil, err
	}
	rt.ItemsLeftBehind = make([]domain.HoldItem, 0, len(items))
	for _, item := range items {
		rt.ItemsLeftBehind = append(rt.ItemsLeftBehind, domain.HoldItem(item))
	}
	return rt, nil
}

func (r *rentalRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	return nextSequence(ctx, r.q, "rentals", prefix)
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	items := make([]string, 0, len(rt.ItemsLeftBehind))
	for _, item := range rt.ItemsLeftBehind {
		items = append(items, string(item))
	}

	query := `INSERT INTO rentals (id, reservation_id, date, device_type, device_id, pickup_location, pickup_time,
	          name, phone_number, address, city, province, postal_code, country,
	          deposit_payment_method, deposit_payment_amount, fee_payment_method, fee_payment_amount,
	          staff_name, signature, items_left_behind, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	logger.DatabaseCall("insert_rental", query, "id", rt.ID, "device_id", rt.DeviceID)
	_, err := r.q.ExecContext(ctx, query, rt.ID, rt.ReservationID, rt.Date, rt.DeviceType, rt.DeviceID,
		rt.PickupLocation, rt.PickupTime, rt.Name, rt.PhoneNumber, rt.Address, rt.City, rt.Province,
		rt.PostalCode, rt.Country, rt.DepositPaymentMethod, rt.DepositPaymentAmount,
		rt.FeePaymentMethod, rt.FeePaymentAmount, rt.StaffName, rt.Signature,
		pq.Array(items), rt.Notes)
	logger.DatabaseResult("insert_rental", 1, err)
	return mapError(err, "rental", rt.ID)
}

func (r *rentalRepository) get(ctx context.Context, id string, forUpdate bool) (*domain.Rental, error) {
	b := psql.Select(rentalColumns...).From("rentals").Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rt, err := scanRental(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "rental", id)
	}
	return rt, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	return r.get(ctx, id, false)
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	return r.get(ctx, id, true)
}

func (r *rentalRepository) ListByDate(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	b := psql.Select(rentalColumns...).From("rentals").Where(sq.Eq{"date": filter.Date})
	if filter.DeviceType != nil {
		b = b.Where(sq.Eq{"device_type": *filter.DeviceType})
	}
	if filter.InProgressOnly {
		b = b.Where(sq.Eq{"return_time": nil})
	}
	query, args, err := b.OrderBy("pickup_time", "id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) UpdateDevice(ctx context.Context, id, deviceID string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE rentals SET device_id = $1 WHERE id = $2 AND return_time IS NULL`, deviceID, id)
	return expectOneRow(result, mapError(err, "rental", id), "rental", id)
}

// Complete stamps the return fields on a rental that is still open.
func (r *rentalRepository) Complete(ctx context.Context, c *domain.CompletedRental) error {
	query := `UPDATE rentals SET return_location = $1, return_time = $2, return_staff_name = $3, return_signature = $4
	          WHERE id = $5 AND return_time IS NULL`
	result, err := r.q.ExecContext(ctx, query, c.ReturnLocation, c.ReturnTime, c.ReturnStaffName, c.ReturnSignature, c.ID)
	return expectOneRow(result, mapError(err, "rental", c.ID), "rental", c.ID)
}

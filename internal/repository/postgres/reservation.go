package postgres

import (
	"context"
	"database/sql"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"

	sq "github.com/Masterminds/squirrel"
)

type reservationRepository struct {
	q querier
}

var reservationColumns = []string{
	"id", "to_char(date, 'YYYY-MM-DD')", "device_type", "name", "phone_number",
	"location", "pickup_time", "status", "device_id", "rental_id", "notes",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	err := row.Scan(&r.ID, &r.Date, &r.DeviceType, &r.Name, &r.PhoneNumber,
		&r.Location, &r.PickupTime, &r.Status, &r.DeviceID, &r.RentalID, &r.Notes)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reservationRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	return nextSequence(ctx, r.q, "reservations", prefix)
}

// nextSequence reads the highest three-digit suffix used under prefix.
func nextSequence(ctx context.Context, q querier, table, prefix string) (int, error) {
	query := `SELECT COALESCE(MAX(CAST(RIGHT(id, 3) AS INTEGER)), 0) + 1 FROM ` + table + ` WHERE id LIKE $1`
	var seq int
	if err := q.QueryRowContext(ctx, query, prefix+"%").Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (id, date, device_type, name, phone_number, location, pickup_time, status, device_id, rental_id, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("insert_reservation", query, "id", res.ID)
	_, err := r.q.ExecContext(ctx, query, res.ID, res.Date, res.DeviceType, res.Name, res.PhoneNumber,
		res.Location, res.PickupTime, res.Status, res.DeviceID, res.RentalID, res.Notes)
	logger.DatabaseResult("insert_reservation", 1, err)
	return mapError(err, "reservation", res.ID)
}

func (r *reservationRepository) get(ctx context.Context, id, suffix string) (*domain.Reservation, error) {
	b := psql.Select(reservationColumns...).From("reservations").Where(sq.Eq{"id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := scanReservation(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "reservation", id)
	}
	return res, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.get(ctx, id, "")
}

func (r *reservationRepository) GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *reservationRepository) ListByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	b := psql.Select(reservationColumns...).From("reservations").Where(sq.Eq{"date": filter.Date})
	if filter.DeviceType != nil {
		b = b.Where(sq.Eq{"device_type": *filter.DeviceType})
	}
	if filter.ExcludePickedUp {
		b = b.Where(sq.NotEq{"status": []string{
			string(domain.ReservationStatusPickedUp),
			string(domain.ReservationStatusCompleted),
		}})
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

	reservations := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *reservationRepository) CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("reservations").
		Where(sq.Eq{"date": date, "device_type": deviceType, "location": location}).
		Where(sq.NotEq{"status": domain.ReservationStatusCancelled}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	query := `UPDATE reservations SET name = $1, phone_number = $2, location = $3, pickup_time = $4,
	          status = $5, device_id = $6, notes = $7 WHERE id = $8`
	result, err := r.q.ExecContext(ctx, query, res.Name, res.PhoneNumber, res.Location, res.PickupTime,
		res.Status, res.DeviceID, res.Notes, res.ID)
	return expectOneRow(result, mapError(err, "reservation", res.ID), "reservation", res.ID)
}

// BindRental attaches a rental to a reservation that has none yet.
func (r *reservationRepository) BindRental(ctx context.Context, id, rentalID string, status domain.ReservationStatus) error {
	query := `UPDATE reservations SET rental_id = $1, status = $2 WHERE id = $3 AND rental_id IS NULL`
	result, err := r.q.ExecContext(ctx, query, rentalID, status, id)
	if err != nil {
		return mapError(err, "reservation", id)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflictError("reservation %s is already bound to a rental", id)
	}
	return nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE reservations SET status = $1 WHERE id = $2`, status, id)
	return expectOneRow(result, mapError(err, "reservation", id), "reservation", id)
}

func expectOneRow(result sql.Result, err error, resource, id string) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(resource, id)
	}
	return nil
}

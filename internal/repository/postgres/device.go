package postgres

import (
	"context"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type deviceRepository struct {
	q querier
}

const deviceColumns = `id, type, status, location`

func (r *deviceRepository) ListAll(ctx context.Context) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []domain.Device{}
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.Type, &d.Status, &d.Location); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *deviceRepository) ListAvailableIDs(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error) {
	query := `SELECT id FROM devices WHERE type = $1 AND location = $2 AND status = $3 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, deviceType, location, domain.DeviceStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *deviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	d := &domain.Device{}
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Type, &d.Status, &d.Location)
	if err != nil {
		return nil, mapError(err, "device", id)
	}
	return d, nil
}

func (r *deviceRepository) insertBuilder(devices []domain.Device) sq.InsertBuilder {
	b := psql.Insert("devices").Columns("id", "type", "status", "location")
	for _, d := range devices {
		b = b.Values(d.ID, d.Type, d.Status, d.Location)
	}
	return b
}

func (r *deviceRepository) Insert(ctx context.Context, devices []domain.Device) error {
	return r.execInsert(ctx, "insert_devices", r.insertBuilder(devices))
}

func (r *deviceRepository) Upsert(ctx context.Context, devices []domain.Device) error {
	b := r.insertBuilder(devices).
		Suffix("ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, status = EXCLUDED.status, location = EXCLUDED.location")
	return r.execInsert(ctx, "upsert_devices", b)
}

func (r *deviceRepository) execInsert(ctx context.Context, operation string, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	logger.DatabaseCall(operation, query)
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(operation, 0, err)
		return mapError(err, "devices", "")
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult(operation, n, nil)
	return nil
}

func (r *deviceRepository) DeleteAll(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM devices`)
	return err
}

func (r *deviceRepository) UpdateLocations(ctx context.Context, ids []string, location domain.Location) ([]string, error) {
	query := `UPDATE devices SET location = $1 WHERE id = ANY($2) RETURNING id`
	rows, err := r.q.QueryContext(ctx, query, location, pq.Array(ids))
	if err != nil {
		return nil, mapError(err, "devices", "")
	}
	defer rows.Close()

	updated := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	return updated, rows.Err()
}

func (r *deviceRepository) UpdateStatusIf(ctx context.Context, id string, expected, next domain.DeviceStatus, location *domain.Location) (int64, error) {
	query := `UPDATE devices SET status = $1, location = COALESCE($2, location) WHERE id = $3 AND status = $4`
	logger.DatabaseCall("update_device_status", query, "device_id", id, "from", expected, "to", next)
	return r.execStatus(ctx, query, id, next, nullableLocation(location), id, expected)
}

func (r *deviceRepository) UpdateStatus(ctx context.Context, id string, next domain.DeviceStatus, location *domain.Location) error {
	query := `UPDATE devices SET status = $1, location = COALESCE($2, location) WHERE id = $3`
	logger.DatabaseCall("set_device_status", query, "device_id", id, "to", next)
	n, err := r.execStatus(ctx, query, id, next, nullableLocation(location), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError("device", id)
	}
	return nil
}

func (r *deviceRepository) execStatus(ctx context.Context, query, id string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("update_device_status", 0, err)
		return 0, mapError(err, "device", id)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update_device_status", n, err)
	return n, err
}

func nullableLocation(location *domain.Location) any {
	if location == nil {
		return nil
	}
	return string(*location)
}

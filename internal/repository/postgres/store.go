package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"mobility-rental-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repos struct {
	devices      repository.DeviceRepository
	reservations repository.ReservationRepository
	rentals      repository.RentalRepository
}

func newRepos(q querier) *repos {
	return &repos{
		devices:      &deviceRepository{q: q},
		reservations: &reservationRepository{q: q},
		rentals:      &rentalRepository{q: q},
	}
}

func (r *repos) Devices() repository.DeviceRepository           { return r.devices }
func (r *repos) Reservations() repository.ReservationRepository { return r.reservations }
func (r *repos) Rentals() repository.RentalRepository           { return r.rentals }

type Store struct {
	db *sql.DB
	*repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn inside one transaction. The transaction commits only when
// fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

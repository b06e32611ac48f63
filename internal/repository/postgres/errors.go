package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"mobility-rental-backend/internal/domain"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// mapError translates driver errors into domain errors. resource and id
// describe the record the statement was about.
func mapError(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(resource, id)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return domain.NewConflictError("%s - %s", pqErr.Message, pqErr.Detail)
	case foreignKeyViolation:
		return &domain.NotFoundError{Resource: resource, ID: fmt.Sprintf("%s (%s)", id, pqErr.Detail)}
	case checkViolation:
		return domain.NewValidationError(resource, "%s", pqErr.Message)
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}

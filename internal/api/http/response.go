package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

type IDResponse struct {
	ID string `json:"id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

var ok = SuccessResponse{Success: true}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes. Anything unrecognized is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  *domain.ValidationError
		conflict *domain.ConflictError
		notFound *domain.NotFoundError
		unknown  *domain.UnknownDeviceTypeError
		badJSON  *malformedRequestError
	)
	switch {
	case errors.As(err, &badJSON):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: badJSON.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: invalid.Fields})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: conflict.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &unknown):
		logger.ErrorContext(r.Context(), "Unknown device type reached the service layer", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: unknown.Error()})
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

type malformedRequestError struct {
	msg string
}

func (e *malformedRequestError) Error() string { return e.msg }

const maxBodyBytes = 5 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &malformedRequestError{msg: fmt.Sprintf("malformed request body: %v", err)}
	}
	if dec.More() {
		return &malformedRequestError{msg: "malformed request body: multiple JSON values"}
	}
	return nil
}

// query reads the request's optional query parameters and collects
// problems as field errors.
type query struct {
	r    *http.Request
	errs []domain.FieldError
}

func newQuery(r *http.Request) *query {
	return &query{r: r}
}

func (q *query) get(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

func (q *query) required(name string) string {
	v := q.get(name)
	if v == "" {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "is required"})
	}
	return v
}

func (q *query) boolean(name string) bool {
	v := q.get(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "must be true or false"})
	}
	return b
}

func (q *query) integer(name string, def int) int {
	v := q.get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "must be an integer"})
	}
	return n
}

func (q *query) deviceType(name string, required bool) *domain.DeviceType {
	v := q.get(name)
	if v == "" {
		if required {
			q.errs = append(q.errs, domain.FieldError{Field: name, Message: "is required"})
		}
		return nil
	}
	t := domain.DeviceType(v)
	if !t.Valid() {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: fmt.Sprintf("must be one of %v", domain.DeviceTypes)})
	}
	return &t
}

func (q *query) err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: q.errs}
}

package directory

import (
	"errors"
	"sort"
	"strings"

	"blooddonor/pkg/types"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError carries one message per invalid form field.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid donor fields: " + strings.Join(fields, ", ")
}

// UnavailableError is returned when the underlying store rejects a call.
// Message is safe to show to the user.
type UnavailableError struct {
	Op      string
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() []error {
	return []error{types.ErrDirectoryUnavailable, e.Err}
}

func unavailable(op string, err error, fallback string) *UnavailableError {
	return &UnavailableError{
		Op:      op,
		Message: userMessage(err, fallback),
		Err:     err,
	}
}

// userMessage prefers the structured detail of a postgres error and falls
// back to a generic message when the failure carries none.
func userMessage(err error, fallback string) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg := strings.TrimSpace(pgErr.Message); msg != "" {
			return msg
		}
		if detail := strings.TrimSpace(pgErr.Detail); detail != "" {
			return detail
		}
	}
	return fallback
}

// Message extracts a user facing message from any directory error.
func Message(err error, fallback string) string {
	var unavailableErr *UnavailableError
	if errors.As(err, &unavailableErr) && unavailableErr.Message != "" {
		return unavailableErr.Message
	}
	return fallback
}

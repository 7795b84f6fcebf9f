package booking

import (
	"errors"
	"fmt"

	"github.com/codr1/CourtReserve/internal/slots"
)

// ValidationError rejects malformed or policy-violating input before any mutation.
type ValidationError = slots.ValidationError

var (
	// ErrNotFound marks a missing reservation, court or user.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a range that collides with a confirmed reservation or maintenance window.
	ErrConflict = errors.New("conflict")
)

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d %w", what, id, ErrNotFound)
}

func conflict(message string) error {
	return fmt.Errorf("%w: %s", ErrConflict, message)
}

var (
	errCourtBooked      = conflict("court is already booked for the requested time")
	errCourtMaintenance = conflict("court is unavailable for maintenance during the requested time")
)

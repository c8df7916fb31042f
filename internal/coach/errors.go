package coach

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a day, set or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for rejected input. Nothing is written.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned for writes that collide with existing state.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

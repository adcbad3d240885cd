/*
errors.go - Error taxonomy for the tracker core

ERROR CATEGORIES:
  1. Validation errors - malformed input, raised by the boundary layer
     (cli, import) before anything reaches a Store
  2. Storage errors - the medium is missing, locked, closed or failed I/O
  3. Not found - NOT an error; DeleteByID reports it as a false result

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, tracker.ErrStorageUnavailable) {
        // report and keep the session alive
    }

  A failed read always returns a non-nil error. Stores never convert a
  storage failure into an empty slice.

SEE ALSO:
  - store.go: Store contract that produces StorageError
  - validate.go: Boundary helpers that produce ValidationError
*/
package tracker

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorageUnavailable is matched by every failure of the storage medium.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("invalid input")

	// ErrUnsupported is returned when a backend lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StorageError wraps a medium failure with the operation that hit it.
// It matches both ErrStorageUnavailable and the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: storage unavailable", e.Op)
	}
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorageUnavailable}
	}
	return []error{ErrStorageUnavailable, e.Err}
}

// Unavailable wraps err as a StorageError for op. Returns nil for a nil err
// and leaves errors that already match ErrStorageUnavailable untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ValidationError describes one rejected input value.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsStorageUnavailable reports whether err came from the storage medium.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

package booking

import (
	"errors"
	"fmt"
)

// ErrConflict reports that the slot belongs to another reservation. Pick a different slot.
var ErrConflict = errors.New("slot already taken")

// ValidationError reports a request the caller must fix before retrying.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransientStorageError reports that the ledger or inventory could not be reached.
// Retrying the identical request is safe: if an earlier attempt committed, the retry gets ErrConflict.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}

// Temporary marks the error as retryable.
func (e *TransientStorageError) Temporary() bool {
	return true
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether err is a *TransientStorageError.
func IsTransient(err error) bool {
	var te *TransientStorageError
	return errors.As(err, &te)
}

package store

import "github.com/pkg/errors"

// ErrNotFound is returned when a record or its detail file does not
// exist.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects a submission before anything is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: errors.Errorf(format, args...).Error()}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Package service implements the business operations on top of the
// repositories: checkout fan-out, the order status state machine and the
// weekly ledger clear.
package service

import "errors"

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

// newValidationError keeps the constructor private to the package.
func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation helps callers distinguish between business and
// infrastructure failures; handlers answer 400 for the former and 500 for
// the latter.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

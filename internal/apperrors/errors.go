package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidLevel is returned when an upgrade names a level missing from the catalog.
var ErrInvalidLevel = fmt.Errorf("%w: invalid level", ErrValidation)

// ErrInvalidAmount is returned for non-positive or over-precise monetary amounts.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)

// ErrAccountInactive is returned when the principal is not allowed to transact.
var ErrAccountInactive = fmt.Errorf("%w: account may not transact", ErrValidation)

// ErrInsufficientFunds indicates a debit larger than the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAlreadyProcessed indicates a second transition attempt on a reviewed request.
var ErrAlreadyProcessed = errors.New("transaction already processed")

// ErrConcurrencyConflict indicates lock or version contention. The whole unit of work may be retried.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrStorageFailure indicates the durability layer failed mid-unit. The unit was rolled back.
var ErrStorageFailure = errors.New("storage failure")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. Errors without an explicit cause are reported as storage failures.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil {
		err = ErrStorageFailure
	}
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err allows the caller to rerun the whole unit of work.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

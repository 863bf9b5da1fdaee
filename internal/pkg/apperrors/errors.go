package apperrors

import (
	"errors"
	"fmt"
)

// Internal codes are stable machine-readable identifiers, independent of the
// HTTP status, used for client-side error branching.
const (
	CodeInvalidRequest   = "ML-0001"
	CodeInvalidArgument  = "ML-0002"
	CodeCustomerNotFound = "ML-1101"
	CodeUnauthorized     = "ML-1200"
	CodeAccessDenied     = "ML-1201"
	CodeInternalError    = "ML-9999"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")
)

// FieldViolation is a single field-level validation failure. All violations
// found in one request travel together in a ValidationError so the client
// sees them in a single response.
type FieldViolation struct {
	Field   string
	Message string
}

type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d violation(s)", len(e.Violations))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(violations []FieldViolation) error {
	return &ValidationError{Violations: violations}
}

// AppError carries the HTTP status and the internal code a handler should put
// on the wire.
type AppError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewCustomerNotFound(customerID int64) error {
	return &AppError{
		Status:  404,
		Code:    CodeCustomerNotFound,
		Message: fmt.Sprintf("Customer %d not exists", customerID),
		Cause:   ErrNotFound,
	}
}

func NewAccessDenied() error {
	return &AppError{
		Status:  403,
		Code:    CodeAccessDenied,
		Message: "Access denied",
		Cause:   ErrForbidden,
	}
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Status:  500,
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

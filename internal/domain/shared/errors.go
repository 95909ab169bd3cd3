package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
)

// ValidationError is a validation failure carrying the two compared figures
// so a caller can build a precise user message. Requested is the amount the
// caller asked for, Allowed is the maximum the named field permits.
type ValidationError struct {
	DomainError
	Field     string          `json:"field"`
	Requested decimal.Decimal `json:"requested"`
	Allowed   decimal.Decimal `json:"allowed"`
}

// NewValidationError creates a ValidationError for an amount exceeding a limit
func NewValidationError(field string, requested, allowed decimal.Decimal) *ValidationError {
	return &ValidationError{
		DomainError: DomainError{
			Code:    "VALIDATION_FAILED",
			Message: fmt.Sprintf("%s: requested %s exceeds allowed %s", field, requested.StringFixed(2), allowed.StringFixed(2)),
		},
		Field:     field,
		Requested: requested,
		Allowed:   allowed,
	}
}

// Is lets errors.Is match a ValidationError against ErrInvalidInput
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InsufficientBalanceError is the specialization of a validation failure for
// a requested amount exceeding a student's available credit. Both figures
// are always reported.
type InsufficientBalanceError struct {
	DomainError
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// NewInsufficientBalanceError creates an InsufficientBalanceError
func NewInsufficientBalanceError(requested, available decimal.Decimal) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		DomainError: DomainError{
			Code:    "INSUFFICIENT_BALANCE",
			Message: fmt.Sprintf("Insufficient balance: requested %s, available %s", requested.StringFixed(2), available.StringFixed(2)),
		},
		Requested: requested,
		Available: available,
	}
}

// Is lets errors.Is match against the ErrInsufficientBalance sentinel
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

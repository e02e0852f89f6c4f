package shared

import "errors"

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
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrWeightRequired    = NewDomainError("WEIGHT_REQUIRED", "A weight is required for this material")
	ErrWeightOutOfRange  = NewDomainError("WEIGHT_OUT_OF_RANGE", "Weight is outside the candidate's allowed range")
	ErrOracleUnavailable = NewDomainError("ORACLE_UNAVAILABLE", "Source-of-truth ledger view could not be read")
	ErrAlreadyMatched    = NewDomainError("ALREADY_MATCHED", "Receipt line is already bound to an order line")
)

// IsNotFound reports whether the error carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrNotFound.Code
	}
	return false
}

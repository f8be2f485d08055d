package shared

import "errors"

// ErrorKind classifies a domain error for transport mapping
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindBusinessRule ErrorKind = "business_rule"
	KindUpstream     ErrorKind = "upstream_unavailable"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindRateLimited  ErrorKind = "rate_limited"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinels survive re-creation with a custom message
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new business rule error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindBusinessRule,
	}
}

// NewValidationError creates an error for bad or missing input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewNotFoundError creates an error for an absent resource
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindNotFound}
}

// NewUpstreamError creates an error for a failed call to an external service
func NewUpstreamError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindUpstream}
}

// NewUnauthorizedError creates an authentication failure
func NewUnauthorizedError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindUnauthorized}
}

// NewForbiddenError creates an authorization failure
func NewForbiddenError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindForbidden}
}

// NewConflictError creates an error for a uniqueness violation
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindConflict}
}

// NewRateLimitedError creates an error for an action repeated too soon
func NewRateLimitedError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindRateLimited}
}

// Common domain errors
var (
	ErrNotFound      = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewUnauthorizedError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewForbiddenError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables.
//
// The unauthorized family ("who are you") is deliberately separate from the
// forbidden family ("you may not do this"): the former calls for re-auth, the
// latter does not, and the transport layer maps them to different statuses.
var (
	// Not Found Errors
	ErrUserNotFound     = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrOfficeNotFound   = NewDomainError(ErrorTypeNotFound, "family office not found", nil)
	ErrFamilyNotFound   = NewDomainError(ErrorTypeNotFound, "family not found", nil)
	ErrDocumentNotFound = NewDomainError(ErrorTypeNotFound, "document not found", nil)
	ErrMeetingNotFound  = NewDomainError(ErrorTypeNotFound, "meeting not found", nil)
	ErrMessageNotFound  = NewDomainError(ErrorTypeNotFound, "message not found", nil)

	// Validation Errors
	ErrInvalidInput        = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidRole         = NewDomainError(ErrorTypeValidation, "invalid role", nil)
	ErrInvalidDocumentType = NewDomainError(ErrorTypeValidation, "invalid document type", nil)
	ErrFileTooLarge        = NewDomainError(ErrorTypeValidation, "file too large", nil)
	ErrFamilyIDRequired    = NewDomainError(ErrorTypeValidation, "family ID is required", nil)

	// Authentication Errors (the "who are you" family)
	ErrUnauthorized         = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidCredentials   = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrInvalidToken         = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrTokenExpired         = NewDomainError(ErrorTypeUnauthorized, "authentication token expired", nil)
	ErrMalformedToken       = NewDomainError(ErrorTypeUnauthorized, "malformed authentication token", nil)
	ErrPrincipalNotFound    = NewDomainError(ErrorTypeUnauthorized, "user not found for token subject", nil)
	ErrPrincipalDeactivated = NewDomainError(ErrorTypeUnauthorized, "user account is deactivated", nil)

	// Permission Errors (the "you may not do this" family)
	ErrForbidden               = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrInsufficientPermissions = NewDomainError(ErrorTypeForbidden, "insufficient permissions", nil)
	ErrNoFamilyAccess          = NewDomainError(ErrorTypeForbidden, "no access to this family", nil)
	ErrNoDocumentAccess        = NewDomainError(ErrorTypeForbidden, "no access to this document", nil)

	// Conflict Errors
	ErrDuplicateEmail = NewDomainError(ErrorTypeConflict, "email already registered", nil)

	// Internal Errors
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError = NewDomainError(ErrorTypeInternal, "database error", nil)
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

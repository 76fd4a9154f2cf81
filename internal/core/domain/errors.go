// Package domain defines the core domain models for keyden.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes are stable identifiers carried on the wire alongside the message, so
// clients can react to the kind of failure without parsing prose.
//
// @req RQ-0104
// @design DS-0104
type DomainError struct {
	Code    string // Error code (e.g., "KD-DB-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two DomainErrors compare equal when
// their codes match, regardless of details or cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks whether the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Command errors (CMD).
var (
	// ErrParse indicates a malformed command or argument. Details name the
	// offending token and the expected form.
	ErrParse = NewDomainError("KD-CMD-4000", "parse error")
)

// Database errors (DB).
var (
	// ErrDatabaseNotFound indicates a use/drop against an unknown name.
	ErrDatabaseNotFound = NewDomainError("KD-DB-4040", "database not found")

	// ErrDatabaseExists indicates a create against a taken name.
	ErrDatabaseExists = NewDomainError("KD-DB-4090", "database already exists")

	// ErrDatabaseValidation indicates an invalid database definition.
	ErrDatabaseValidation = NewDomainError("KD-DB-4001", "database validation failed")
)

// Authentication errors (AUTH).
var (
	// ErrUnauthorized indicates a credential mismatch on use/drop, or
	// missing credentials for a protected database.
	ErrUnauthorized = NewDomainError("KD-AUTH-4010", "unauthorized")
)

// Session errors (SESS).
var (
	// ErrNoDatabaseSelected indicates a key command before a successful
	// use or create.
	ErrNoDatabaseSelected = NewDomainError("KD-SESS-4120", "no database selected")
)

// Server errors (SRV).
var (
	// ErrRateLimited indicates the connection exceeded its command budget.
	ErrRateLimited = NewDomainError("KD-SRV-4290", "too many requests")
)

// Storage errors (STO).
var (
	// ErrStorage indicates a durability backend failure.
	ErrStorage = NewDomainError("KD-STO-5000", "storage backend error")
)

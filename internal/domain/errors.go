package domain

import (
	"errors"
	"fmt"
)

// DomainError carries a machine-readable Code that the API turns into an
// HTTP status and returns to clients next to the message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Validationf builds a VALIDATION_ERROR with a formatted message.
func Validationf(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Search and export input
var (
	ErrInvalidExportFormat = NewDomainError(ErrCodeValidation, "invalid export format")
	ErrInvalidPattern      = NewDomainError(ErrCodeValidation, "invalid regex pattern")
)

var (
	ErrSnapshotNotFound    = NewDomainError(ErrCodeNotFound, "snapshot not found")
	ErrSavedSearchNotFound = NewDomainError(ErrCodeNotFound, "saved search not found")
	ErrExportJobNotFound   = NewDomainError(ErrCodeNotFound, "export job not found")
	ErrWorkspaceNotFound   = NewDomainError(ErrCodeNotFound, "workspace not found")
	ErrAPIKeyNotFound      = NewDomainError(ErrCodeNotFound, "api key not found")
)

var (
	ErrWorkspaceAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "workspace already exists")
	ErrAPIKeyAlreadyExists    = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authentication. Unknown and malformed keys share ErrInvalidAPIKey.
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Exports
var (
	ErrExportNotReady       = NewDomainError(ErrCodeInvalidOperation, "export is not completed yet")
	ErrStorageNotConfigured = NewDomainError(ErrCodeInvalidOperation, "object storage is not configured")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)

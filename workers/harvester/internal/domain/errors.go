package domain

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeFetchFailed      = "FETCH_FAILED"
	CodeMissingElement   = "MISSING_ELEMENT"
	CodeLayoutFailed     = "LAYOUT_FAILED"
	CodeInvalidContainer = "INVALID_CONTAINER"
	CodePathRejected     = "PATH_REJECTED"
	CodeParseFailed      = "PARSE_FAILED"
	CodeInvalidConfig    = "INVALID_CONFIG"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code      string
	Message   string
	Err       error
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code, so the sentinels below work
// with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error, retryable bool) *DomainError {
	return &DomainError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

// Common domain errors
var (
	ErrFetchFailed = &DomainError{
		Code:    CodeFetchFailed,
		Message: "Failed to fetch document",
	}

	ErrMissingElement = &DomainError{
		Code:    CodeMissingElement,
		Message: "Expected element not found",
	}

	ErrLayoutFailed = &DomainError{
		Code:    CodeLayoutFailed,
		Message: "Failed to build container layout",
	}

	ErrInvalidContainer = &DomainError{
		Code:    CodeInvalidContainer,
		Message: "Container name is not a safe directory name",
	}

	ErrPathRejected = &DomainError{
		Code:    CodePathRejected,
		Message: "File identifier resolves outside the container",
	}

	ErrParseFailed = &DomainError{
		Code:    CodeParseFailed,
		Message: "Failed to parse document",
	}

	ErrInvalidConfig = &DomainError{
		Code:    CodeInvalidConfig,
		Message: "Invalid configuration",
	}
)

// IsRetryable reports whether err wraps a retryable DomainError
func IsRetryable(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}

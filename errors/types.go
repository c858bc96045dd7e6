package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Profile lookup errors
	ErrCodeProfileNotFound           ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeLinkedProfileTypeMismatch ErrorCode = "LINKED_PROFILE_TYPE_MISMATCH"

	// Reload errors
	ErrCodeCacheRefresh   ErrorCode = "CACHE_REFRESH"
	ErrCodeProviderSignal ErrorCode = "PROVIDER_SIGNAL"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ExtenderError represents a structured error with context
type ExtenderError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ExtenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ExtenderError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ExtenderError) WithDetail(key string, value interface{}) *ExtenderError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *ExtenderError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ExtenderError
func New(code ErrorCode, message string) *ExtenderError {
	return &ExtenderError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an ExtenderError
func Wrap(err error, code ErrorCode, message string) *ExtenderError {
	return &ExtenderError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific error code anywhere in its chain.
// Multi-errors (Unwrap() []error) are searched branch by branch.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	switch e := err.(type) {
	case *ExtenderError:
		if e.Code == code {
			return true
		}
		return Is(e.Cause, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(e.Unwrap(), code)
	}
	return false
}

// GetCode extracts the outermost error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	extErr, ok := err.(*ExtenderError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return extErr.Code
}

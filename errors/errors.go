// Package errors defines the structured error type shared by the fsevents
// module. Creation errors are returned to callers; decode and saturation
// errors only ever surface through logs.
package errors

import (
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Creation errors, surfaced synchronously from stream.Create
	ErrCodeInvalidPath     ErrorCode = "INVALID_PATH"
	ErrCodeFlagCombination ErrorCode = "FLAG_COMBINATION"
	ErrCodeStreamCreate    ErrorCode = "STREAM_CREATE"

	// Decode errors, logged per record inside the native callback
	ErrCodeDecodeFlags ErrorCode = "DECODE_FLAGS"
	ErrCodeDecodeInode ErrorCode = "DECODE_INODE"

	// Channel saturation, logged; the record is dropped by policy
	ErrCodeChannelFull ErrorCode = "CHANNEL_FULL"

	// Stream/watcher lifecycle errors
	ErrCodeStreamClosed     ErrorCode = "STREAM_CLOSED"
	ErrCodeWatchUnsupported ErrorCode = "WATCH_UNSUPPORTED"
	ErrCodeWatchClosed      ErrorCode = "WATCH_CLOSED"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with context
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an Error
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	typed, ok := err.(*Error)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return typed.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	typed, ok := err.(*Error)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return typed.Code
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrCorrupted
	ErrStorage
	ErrDelivery
	ErrPermissionDenied
	ErrInternal
)

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// Corrupted marks persisted state whose checksum failed verification. It is
// self-healing at the call site and never surfaced to the user.
func Corrupted(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrCorrupted,
		Message: fmt.Sprintf("%s is corrupted", resource),
		Err:     err,
	}
}

func Storage(op string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: fmt.Sprintf("storage failure during %s", op),
		Err:     err,
	}
}

func Delivery(op string, identity int64, err error) *AppError {
	return &AppError{
		Code:    ErrDelivery,
		Message: fmt.Sprintf("delivery %s failed for identity %d", op, identity),
		Err:     err,
	}
}

func PermissionDenied() *AppError {
	return &AppError{
		Code:    ErrPermissionDenied,
		Message: "notifications not permitted",
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code == code
	}
	return false
}

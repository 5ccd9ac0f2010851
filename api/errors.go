// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the foreignbuf library.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors used across the library. Hot-path accessors return
// these directly so bounds checks stay allocation-free.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrAllocationFailed = errors.New("foreign allocation failed")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNotSupported     = errors.New("operation not supported")
	ErrReadOnly         = fmt.Errorf("buffer is read-only: %w", ErrNotSupported)
	ErrDisposed         = errors.New("buffer already disposed")
	ErrPoolClosed       = errors.New("frame pool is closed")
	ErrExhausted        = errors.New("resource exhausted")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeAllocationFailed
	ErrCodeIndexOutOfRange
	ErrCodeNotSupported
	ErrCodeDisposed
	ErrCodePoolClosed
	ErrCodeExhausted
	ErrCodeInternal
)

// sentinel maps a code to its sentinel for errors.Is matching.
func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeAllocationFailed:
		return ErrAllocationFailed
	case ErrCodeIndexOutOfRange:
		return ErrIndexOutOfRange
	case ErrCodeNotSupported:
		return ErrNotSupported
	case ErrCodeDisposed:
		return ErrDisposed
	case ErrCodePoolClosed:
		return ErrPoolClosed
	case ErrCodeExhausted:
		return ErrExhausted
	default:
		return nil
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel matching the error code, so callers can
// use errors.Is against the package sentinels.
func (e *Error) Unwrap() error {
	return e.Code.sentinel()
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

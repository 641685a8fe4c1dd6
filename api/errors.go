// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hiothread.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrBackendFailure   = errors.New("thread backend failure")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrThreadNotRunning = errors.New("thread not running")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeBackend
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Op      string // failing operation, e.g. "create", "set_priority"
	Message string
	Err     error // underlying cause, may be nil
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel that corresponds to the error code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBackendFailure:
		return e.Code == ErrCodeBackend
	case ErrInvalidArgument:
		return e.Code == ErrCodeInvalidArgument
	}
	return false
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// BackendError wraps a failing backend step.
func BackendError(op string, err error) *Error {
	e := NewError(ErrCodeBackend, "backend call failed")
	e.Op = op
	e.Err = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

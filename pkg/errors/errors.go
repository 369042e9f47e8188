// Unified error handling for the G-code route optimizer
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors (fatal)
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// G-code parsing errors (recoverable, passthrough preserved)
	ErrGCodeParse ErrorCode = "GCODE_PARSE"

	// Solver errors (recoverable per layer)
	ErrSolverInvocation ErrorCode = "SOLVER_INVOCATION"
	ErrSolverTimeout    ErrorCode = "SOLVER_TIMEOUT"
	ErrTourInvalid      ErrorCode = "TOUR_INVALID"

	// Operating-system resource exhaustion (fatal)
	ErrResourceLimit ErrorCode = "RESOURCE_LIMIT"

	// Whole-run errors (fatal)
	ErrInput   ErrorCode = "INPUT"
	ErrRuntime ErrorCode = "RUNTIME"
)

// OptError is the unified error type for the optimizer
type OptError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Layer is the layer index the error is confined to (-1 if not
	// layer-scoped)
	Layer int

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *OptError) Error() string {
	if e.Layer >= 0 {
		return fmt.Sprintf("[%s] layer %d: %s", e.Code, e.Layer, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *OptError) Unwrap() error {
	return e.Err
}

// New creates a new OptError
func New(code ErrorCode, message string) *OptError {
	return &OptError{Code: code, Message: message, Layer: -1}
}

// Newf creates a new OptError from a format string
func Newf(code ErrorCode, format string, args ...interface{}) *OptError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *OptError {
	return &OptError{Code: code, Message: message, Layer: -1, Err: err}
}

// ForLayer scopes the error to a layer index
func (e *OptError) ForLayer(layer int) *OptError {
	e.Layer = layer
	return e
}

// Config errors

// ConfigOptionError creates an error for a missing config option
func ConfigOptionError(option string) *OptError {
	return Newf(ErrConfigOption, "option '%s' must be specified", option)
}

// ConfigValidationError creates an error for an invalid config value
func ConfigValidationError(option, reason string) *OptError {
	return Newf(ErrConfigValidation, "option '%s': %s", option, reason)
}

// G-code errors

// ParseError creates an error for an unrecognized instruction line
func ParseError(line int, raw string) *OptError {
	return Newf(ErrGCodeParse, "unrecognized instruction at line %d: %s", line, raw)
}

// Solver errors

// SolverInvocationError creates an error for a failed solver run
func SolverInvocationError(reason string, err error) *OptError {
	return Wrap(err, ErrSolverInvocation, reason)
}

// SolverTimeoutError creates an error for a timed-out solver run
func SolverTimeoutError(seconds float64) *OptError {
	return Newf(ErrSolverTimeout, "solver exceeded timeout of %.0fs", seconds)
}

// TourValidationError creates an error for a malformed or incomplete tour
func TourValidationError(reason string) *OptError {
	return Newf(ErrTourInvalid, "invalid tour: %s", reason)
}

// Input errors

// InputError creates a fatal error for an unusable input file
func InputError(path, reason string) *OptError {
	return Newf(ErrInput, "input file %s: %s", path, reason)
}

// Classification helpers

// Is checks if the error carries the given error code
func Is(err error, code ErrorCode) bool {
	var oe *OptError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

// IsLayerRecoverable reports whether the error degrades a single layer
// to fallback ordering rather than aborting the run
func IsLayerRecoverable(err error) bool {
	return Is(err, ErrSolverInvocation) ||
		Is(err, ErrSolverTimeout) ||
		Is(err, ErrTourInvalid)
}

// IsFatal reports whether the error must abort the whole run
func IsFatal(err error) bool {
	if IsResourceExhaustion(err) {
		return true
	}
	return Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation) ||
		Is(err, ErrInput) ||
		Is(err, ErrResourceLimit) ||
		Is(err, ErrRuntime)
}

// IsResourceExhaustion reports whether the error stems from OS
// file-handle or process limits
func IsResourceExhaustion(err error) bool {
	return errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.EAGAIN)
}

// ResourceError wraps an OS resource-limit error, surfacing the
// underlying message
func ResourceError(err error) *OptError {
	return Wrap(err, ErrResourceLimit, fmt.Sprintf("operating system limit reached: %v", err))
}

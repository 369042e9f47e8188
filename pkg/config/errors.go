// Package config loads and validates the optimizer's JSON configuration.
package config

import "fmt"

// ConfigError represents a configuration error with option context.
type ConfigError struct {
	Option  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("Option '%s': %s", e.Option, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Message: message,
	}
}

// WrapError wraps an existing error with config context.
func WrapError(option string, err error) *ConfigError {
	return &ConfigError{
		Option:  option,
		Message: err.Error(),
		Cause:   err,
	}
}

// ErrMissingOption returns an error for a required but missing option.
func ErrMissingOption(option string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Message: "must be specified",
	}
}

// ErrInvalidValue returns an error for an invalid value.
func ErrInvalidValue(option string, value interface{}, expected string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Message: fmt.Sprintf("invalid value '%v', expected %s", value, expected),
	}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigError rejects an operation before any I/O. Its message is surfaced
// verbatim to the caller.
type ConfigError struct {
	Msg string
}

func NewConfigError(msg string) *ConfigError {
	return &ConfigError{Msg: msg}
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// UpstreamError reports a non-2xx response from the vulnerability feed.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("NVD API error: %s - %s", e.Status, e.Body)
}

// ValidationError is an admin input error; it unwraps to ErrInvalidInput.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

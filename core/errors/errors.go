// Package errors provides standardized error types and helpers for the
// tokenlens codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrPluginFault indicates an isolated plugin/analyzer failure
	ErrPluginFault = errors.New("plugin fault")
	// ErrUnavailable indicates an external resource is absent (e.g., a live rate)
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "format", "plugin", "rate")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// PluginFaultError represents an isolated failure of a single plugin
// or analyzer invocation: a panic, malformed output, or a timeout.
// Per the propagation policy it is logged and degraded to an empty
// result for that call, never surfaced to the request.
type PluginFaultError struct {
	Plugin    string // Plugin or analyzer identifier
	Operation string // Operation that faulted (e.g., "parse", "conversions")
	Reason    string // Short fault description
	Err       error  // Underlying error, if any
}

func (e *PluginFaultError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("plugin %s: %s faulted: %s", e.Plugin, e.Operation, e.Reason)
	}
	return fmt.Sprintf("plugin %s faulted: %s", e.Plugin, e.Reason)
}

func (e *PluginFaultError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrPluginFault
}

// UnsupportedError represents an unsupported operation for a format
type UnsupportedError struct {
	Operation string // Operation that is not supported
	Format    string // Format identifier involved
	Err       error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s format does not support %s", e.Format, e.Operation)
	}
	return fmt.Sprintf("unsupported operation: %s", e.Operation)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation creates a ValidationError
func NewValidation(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NewPluginFault creates a PluginFaultError
func NewPluginFault(plugin, operation, reason string) *PluginFaultError {
	return &PluginFaultError{Plugin: plugin, Operation: operation, Reason: reason}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Package domain defines domain-specific errors.
// These errors represent pipeline and source failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services and adapters can return.
var (
	// ErrSourceUnavailable is returned when an audio source cannot be acquired
	// (permission denied, no device, capture tool missing).
	ErrSourceUnavailable = errors.New("audio source unavailable")

	// ErrMalformedStream is returned when an acquired stream carries no audio content.
	ErrMalformedStream = errors.New("stream has no audio content")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnknownSourceKind is returned when a source request names an unknown kind.
	ErrUnknownSourceKind = errors.New("unknown source kind")

	// ErrClosed is returned when an operation is attempted on a closed component.
	ErrClosed = errors.New("component closed")

	// ErrNoRenderSurface is returned when no surface is available for the selected backend.
	ErrNoRenderSurface = errors.New("no render surface available")
)

// SourceError represents a failure to acquire or read an audio source.
// It wraps ErrSourceUnavailable or ErrMalformedStream with source context.
type SourceError struct {
	Op     string     // Operation that failed (e.g., "open", "read", "list")
	Kind   SourceKind // Source kind being acquired
	Device string     // Device identifier or file path (if applicable)
	Err    error      // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("source %s %s failed for '%s': %v", e.Kind, e.Op, e.Device, e.Err)
	}
	return fmt.Sprintf("source %s %s failed: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op string, kind SourceKind, device string, err error) *SourceError {
	return &SourceError{
		Op:     op,
		Kind:   kind,
		Device: device,
		Err:    err,
	}
}

// Unavailable wraps cause so that it matches ErrSourceUnavailable.
func Unavailable(cause error) error {
	if cause == nil {
		return ErrSourceUnavailable
	}
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, cause)
}

// Malformed wraps cause so that it matches ErrMalformedStream.
func Malformed(cause error) error {
	if cause == nil {
		return ErrMalformedStream
	}
	return fmt.Errorf("%w: %w", ErrMalformedStream, cause)
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "SourceService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

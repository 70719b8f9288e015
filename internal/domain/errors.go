package domain

import (
	"errors"
	"fmt"
)

// ErrTemplatesMissing is returned when a send is attempted while the AMP or
// fallback template could not be loaded
var ErrTemplatesMissing = errors.New("templates missing: sending is disabled")

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// ConfigurationError is returned by collaborators that lack the settings
// they need to run (no hosting credentials, no send endpoint...)
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not configured: %s", e.Component, e.Message)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Message:   message,
	}
}

// TransportError wraps network and HTTP failures of outbound calls
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: API returned non-OK status code %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsHostingUnavailable reports whether err means the image host could not be
// used, in which case callers fall back to local measurement
func IsHostingUnavailable(err error) bool {
	var ce *ConfigurationError
	var te *TransportError
	return errors.As(err, &ce) || errors.As(err, &te)
}

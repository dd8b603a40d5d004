// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "device", "preference", "notification"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Device domain errors
var (
	ErrDeviceNotFound  = NewDomainError("device", "Find", ErrNotFound, "device not found")
	ErrDeviceNotOwned  = NewDomainError("device", "Deactivate", ErrForbidden, "device belongs to another user")
	ErrEmptyToken      = NewDomainError("device", "Validate", ErrEmptyValue, "device token cannot be empty")
	ErrEmptyPlatform   = NewDomainError("device", "Validate", ErrEmptyValue, "platform cannot be empty")
	ErrInvalidPlatform = NewDomainError("device", "Validate", ErrInvalidInput, "unknown device platform")
)

// Preference domain errors
var (
	ErrPreferenceNotFound = NewDomainError("preference", "Find", ErrNotFound, "notification preference not found")
	ErrInvalidLeadTime    = NewDomainError("preference", "Validate", ErrNegativeValue, "reminder lead minutes cannot be negative")
	ErrInvalidTimeOfDay   = NewDomainError("preference", "Validate", ErrInvalidFormat, "time of day must be HH:MM")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotificationNotOwned = NewDomainError("notification", "MarkRead", ErrForbidden, "notification belongs to another user")
	ErrDeliveryFailed       = NewDomainError("notification", "Send", ErrExternalService, "failed to deliver notification")
)

// Schedule domain errors
var (
	ErrEngagementNotFound = NewDomainError("schedule", "FindEngagement", ErrNotFound, "engagement not found")
	ErrScheduleNotFound   = NewDomainError("schedule", "Find", ErrNotFound, "personal schedule not found")
)

// External service errors
var (
	ErrPushGatewayFailed      = NewDomainError("push", "Send", ErrExternalService, "push gateway request failed")
	ErrPushGatewayTimeout     = NewDomainError("push", "Send", ErrTimeout, "push gateway request timeout")
	ErrPushGatewayUnavailable = NewDomainError("push", "Send", ErrServiceUnavailable, "push gateway is unavailable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden checks if the error is an ownership/authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected conditions. The API layer maps them to status
// codes with errors.Is.
var (
	// ErrNotOwned indicates a resource belongs to a different user.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrAnalysisInProgress is returned when analysis is requested for a
	// dream that is already being analyzed.
	ErrAnalysisInProgress = errors.New("dream analysis is already in progress")

	// ErrAnalysisCompleted is returned when analysis is requested for a dream
	// that already has one.
	ErrAnalysisCompleted = errors.New("dream analysis is already completed")

	// ErrUsageLimitExceeded is returned when the user's plan has no analyses
	// left this month.
	ErrUsageLimitExceeded = errors.New("monthly analysis limit exceeded")

	// ErrInvalidPeriod is returned for pattern periods outside 7 to 365 days.
	ErrInvalidPeriod = errors.New("analysis period must be between 7 and 365 days")

	// ErrInvalidCredentials is returned when login fails for any reason the
	// caller should not distinguish.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnsupportedPaymentMethod is returned for unknown payment methods.
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

	// ErrFreePlanCancel is returned when a free user cancels a subscription.
	ErrFreePlanCancel = errors.New("free plan cannot be cancelled")
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

package service

import (
	"errors"
	"fmt"
)

// Service errors callers can match with errors.Is. The API layer maps
// ErrInvalidSubject to 400 and ErrPersistence to 500.
var (
	// ErrInvalidSubject indicates the name did not resolve to a recognizable
	// technology, or text generation produced nothing usable. Nothing is
	// written when this is returned.
	ErrInvalidSubject = errors.New("not a recognizable development technology")

	// ErrPersistence indicates the card repository refused or failed a write.
	ErrPersistence = errors.New("failed to persist card")

	// ErrMissingDependency is returned by NewCardService for a nil dependency.
	ErrMissingDependency = errors.New("missing service dependency")
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Name      string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("card service %s %q failed: %v", e.Operation, e.Name, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, name string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Name:      name,
		Err:       err,
	}
}

// invalidSubject builds the ErrInvalidSubject error for a canonical name,
// keeping the underlying cause when there is one.
func invalidSubject(name string, cause error) error {
	if cause != nil {
		return NewCardServiceError("produce", name, fmt.Errorf("%w: %w", ErrInvalidSubject, cause))
	}
	return NewCardServiceError("produce", name, ErrInvalidSubject)
}

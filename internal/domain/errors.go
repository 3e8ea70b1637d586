// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyName is returned when a card name is empty after normalization.
	ErrEmptyName = errors.New("card name cannot be empty")

	// ErrNonCanonicalName is returned when a card name is not in canonical form.
	ErrNonCanonicalName = errors.New("card name is not canonical")

	// ErrInvalidSubjectCard is returned when a card marked as not being a
	// recognizable technology is about to be stored.
	ErrInvalidSubjectCard = errors.New("card subject is not a recognizable technology")

	// ErrMissingImageURL is returned when a card has no image reference.
	ErrMissingImageURL = errors.New("card image URL cannot be empty")

	// ErrStatOutOfRange is returned when a stat lies outside [StatMin, StatMax].
	ErrStatOutOfRange = errors.New("card stat out of range")
)

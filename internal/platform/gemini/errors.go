package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyLanguageName is returned when no technology name is given.
	ErrEmptyLanguageName = errors.New("language name cannot be empty")

	// ErrEmptyPrompt is returned when an image prompt is empty.
	ErrEmptyPrompt = errors.New("image prompt cannot be empty")
)

package generation

import "errors"

// Common errors returned by the generation adapters
var (
	// ErrGenerationFailed is returned when a provider call fails for any general reason
	ErrGenerationFailed = errors.New("generation request failed")

	// ErrInvalidResponse is returned when a provider response cannot be parsed or fails validation
	ErrInvalidResponse = errors.New("invalid response from generation provider")

	// ErrContentBlocked is returned when the provider blocks the prompt due to safety filters
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrJobFailed is returned when an asynchronous job reaches a failed terminal state
	ErrJobFailed = errors.New("image generation job failed")

	// ErrPollExhausted is returned when an asynchronous job is still running
	// after the polling budget is spent
	ErrPollExhausted = errors.New("image generation polling attempts exhausted")

	// ErrUnsupportedFormat is returned when generated bytes are not a known image type
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

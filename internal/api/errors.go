package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/ingest"
	"github.com/devdeck/devdeck-api/internal/service"
	"github.com/devdeck/devdeck-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Persistence failures are server errors even when the store rejected
	// the row itself
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError

	// Bad request errors
	case errors.Is(err, service.ErrInvalidSubject),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, ingest.ErrTooFewRows),
		errors.Is(err, ingest.ErrMissingColumn),
		errors.Is(err, ingest.ErrMalformedCSV):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, service.ErrInvalidSubject):
		return service.ErrInvalidSubject.Error()

	case errors.Is(err, domain.ErrEmptyName):
		return "languageName is required"

	case errors.Is(err, service.ErrPersistence):
		return "Failed to save card"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid card data"

	case errors.Is(err, ingest.ErrTooFewRows):
		return "CSV must contain a header and at least one data row"

	case errors.Is(err, ingest.ErrMissingColumn):
		return fmt.Sprintf("CSV header must contain a %q column", ingest.LanguageColumn)

	case errors.Is(err, ingest.ErrMalformedCSV):
		return "Malformed CSV"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateCardRequest.LanguageName' Error:Field validation for 'LanguageName' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := lowerFirst(fieldParts[1])
				if len(fieldParts) >= 5 && fieldParts[3] == "required" {
					return fmt.Sprintf("%s is required", field)
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// HandleAPIError maps err to a status and a safe message and writes the
// error response. defaultMsg replaces the generic message for 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/redact"
	"github.com/go-chi/chi/v5"
)

// decodeAndValidate reads the JSON body into v and validates it. On failure
// it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}

// getPathName extracts and canonicalizes a card name from the URL path.
func getPathName(r *http.Request, paramName string) (string, error) {
	raw := chi.URLParam(r, paramName)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}

	name := domain.CanonicalName(raw)
	if name == "" {
		return "", fmt.Errorf("%s: %w", paramName, domain.ErrEmptyName)
	}
	return name, nil
}

// invalidSubjectMessage is the user-facing text for a rejected name.
func invalidSubjectMessage(name string) string {
	return fmt.Sprintf("%q is not a recognizable development technology", domain.CanonicalName(name))
}

// respondInvalidSubject writes the 400 body the gallery uses to flag names
// that are not technologies.
func respondInvalidSubject(w http.ResponseWriter, r *http.Request, name string) {
	shared.RespondWithJSON(w, r, http.StatusBadRequest, InvalidSubjectResponse{
		Error:           invalidSubjectMessage(name),
		IsValidLanguage: false,
		TraceID:         shared.GetTraceID(r.Context()),
	})
}

// detach returns a context that keeps the request's values but ignores its
// cancellation, so a client disconnect does not abort generation. The
// context is still cancelled when base is.
func detach(r *http.Request, base context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	if base == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

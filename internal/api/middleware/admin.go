package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
)

const bearerPrefix = "Bearer "

// Messages returned with 401 responses.
const (
	MsgMissingAuthorization = "Unauthorized: missing or malformed Bearer authorization header"
	MsgInvalidAdminKey      = "Unauthorized: invalid admin key"
)

var (
	errMissingAuthorization = errors.New("missing or malformed authorization header")
	errInvalidAdminKey      = errors.New("admin key mismatch")
)

// AdminAuth guards admin routes with a shared secret sent as
// "Authorization: Bearer <secret>".
type AdminAuth struct {
	secret []byte
}

// NewAdminAuth creates an AdminAuth for secret. An empty secret rejects
// every request.
func NewAdminAuth(secret string) *AdminAuth {
	return &AdminAuth{secret: []byte(secret)}
}

// Authenticate rejects requests without the exact admin secret before the
// wrapped handler runs.
func (m *AdminAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgMissingAuthorization,
				errMissingAuthorization, shared.WithElevatedLogLevel())
			return
		}

		token := []byte(authHeader[len(bearerPrefix):])
		if len(m.secret) == 0 || subtle.ConstantTimeCompare(token, m.secret) != 1 {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInvalidAdminKey,
				errInvalidAdminKey, shared.WithElevatedLogLevel())
			return
		}

		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Debug("admin request authorized", slog.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

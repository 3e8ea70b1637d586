package middleware

import (
	"log/slog"
	"net/http"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and echoes it in
// the X-Trace-ID response header. Loggers taken from the context carry it as
// request_id. Apply it early so every later handler sees the ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		w.Header().Set("X-Trace-ID", shared.GetTraceID(ctx))

		logger.FromContextOrDefault(ctx, slog.Default()).Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

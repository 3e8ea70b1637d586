package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/devdeck/devdeck-api/internal/api"
	apiMiddleware "github.com/devdeck/devdeck-api/internal/api/middleware"
	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// setupRouter creates the application router. Generation started by a
// request is cancelled when base is.
func (app *application) setupRouter(base context.Context) http.Handler {
	return newRouter(app.config, app.cardService, base, app.logger)
}

// newRouter registers middleware, API routes, the health check and static
// file serving.
func newRouter(cfg *config.Config, cards service.CardService, base context.Context, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestSize(cfg.Server.MaxBodyBytes))
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(cards, base, logger)
	adminHandler := api.NewAdminHandler(cards, base, logger)
	adminAuth := apiMiddleware.NewAdminAuth(cfg.Auth.AdminSecret)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", cardHandler.ListCards)
		r.Post("/cards", cardHandler.CreateCard)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(adminAuth.Authenticate)

			r.Post("/cards/update", cardHandler.UpdateCards)
			r.Delete("/cards/{name}", cardHandler.DeleteCard)

			r.Post("/admin/generate-bulk", adminHandler.GenerateBulk)
			r.Post("/admin/upload-csv", adminHandler.UploadCSV)
			r.Get("/admin/cards/{name}", adminHandler.GetCard)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.Any("error", err))
		}
	})

	prefix := strings.TrimSuffix(cfg.Assets.PublicPrefix, "/")
	mountStatic(r, prefix+"/images", cfg.Assets.ImagesDir)
	mountStatic(r, prefix+"/icons", cfg.Assets.IconsDir)
	mountStatic(r, "", cfg.Server.StaticDir)

	return r
}

// mountStatic serves dir below pattern. Hidden files and directories
// without an index page are reported as missing.
func mountStatic(r chi.Router, pattern, dir string) {
	files := http.FileServer(staticFS{http.Dir(dir)})
	if pattern != "" {
		files = http.StripPrefix(pattern, files)
	}
	r.Handle(pattern+"/*", files)
}

type staticFS struct {
	http.FileSystem
}

// hiddenExts are file types that never belong to the gallery frontend.
var hiddenExts = map[string]bool{
	".db": true, ".sqlite": true, ".sqlite3": true,
	".go": true, ".mod": true, ".sum": true,
	".env": true, ".yaml": true, ".yml": true, ".toml": true,
}

// hiddenName reports whether a path element must not be served: dotfiles,
// the data directory, config files and server-side file types.
func hiddenName(part string) bool {
	switch {
	case strings.HasPrefix(part, "."):
		return true
	case part == "data":
		return true
	case strings.HasPrefix(strings.ToLower(part), "config."):
		return true
	default:
		return hiddenExts[strings.ToLower(path.Ext(part))]
	}
}

func (s staticFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(name, "/") {
		if hiddenName(part) {
			return nil, fs.ErrNotExist
		}
	}

	f, err := s.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := s.FileSystem.Open(path.Join(name, "index.html"))
		if err != nil {
			_ = f.Close()
			return nil, fs.ErrNotExist
		}
		_ = index.Close()
	}
	return f, nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/filestore"
	"github.com/devdeck/devdeck-api/internal/platform/gemini"
	"github.com/devdeck/devdeck-api/internal/platform/replicate"
	"github.com/devdeck/devdeck-api/internal/platform/sqlstore"
	"github.com/devdeck/devdeck-api/internal/service"
)

// application holds the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	cardService service.CardService
}

// newApplication wires stores, providers and the card service. The database
// must already be open and migrated.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	text, err := gemini.NewTextGenerator(ctx, logger.With(slog.String("component", "text_generator")), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text generator: %w", err)
	}

	images, err := newImageGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	logger.Info("generation providers initialized",
		slog.String("text_model", cfg.LLM.ModelName),
		slog.String("image_provider", cfg.Image.Provider))

	assets, err := filestore.NewAssetStore(cfg.Assets, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize asset store: %w", err)
	}

	cards, err := service.NewCardService(service.Deps{
		Cards:              sqlstore.NewCardStore(db, dialect, logger),
		Text:               text,
		Images:             images,
		Assets:             assets,
		Logger:             logger,
		RequestDelay:       cfg.Generation.RequestDelay,
		RefreshConcurrency: cfg.Generation.RefreshConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	logger.Info("application initialized successfully")
	return &application{
		config:      cfg,
		logger:      logger,
		cardService: cards,
	}, nil
}

// newImageGenerator selects the configured image provider.
func newImageGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (generation.ImageGenerator, error) {
	switch cfg.Image.Provider {
	case "replicate":
		client, err := replicate.NewClient(replicate.OptionsFromConfig(cfg.Image), logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "imagen":
		imagen, err := gemini.NewImageGenerator(ctx, logger, cfg.LLM, cfg.Image)
		if err != nil {
			return nil, err
		}
		return imagen, nil
	default:
		return nil, fmt.Errorf("%w: unknown image provider %q", generation.ErrInvalidConfig, cfg.Image.Provider)
	}
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter(ctx)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

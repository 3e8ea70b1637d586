// Package main implements the entry point for the devdeck API server, which
// generates technology trading cards and serves them with the gallery's
// static pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/platform/sqlstore"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// run loads configuration, opens the database and either executes the
// requested migration command or serves HTTP until SIGINT/SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("image_provider", cfg.Image.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}

	db, err := sqlstore.Open(ctx, dialect, cfg.Database.URL, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", slog.Any("error", err))
		}
	}()

	if migrateCmd != "" {
		return sqlstore.Migrate(ctx, db, dialect, migrateCmd, l)
	}

	// The schema is bootstrapped on every start.
	if err := sqlstore.Migrate(ctx, db, dialect, sqlstore.MigrateUp, l); err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, l, db, dialect)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

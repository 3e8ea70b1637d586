package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

func gooseDialect(d Dialect) (goose.Dialect, error) {
	switch d {
	case DialectPostgres:
		return goose.DialectPostgres, nil
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

func newProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	gd, err := gooseDialect(dialect)
	if err != nil {
		return nil, err
	}
	fsys, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate runs a goose command ("up", "down" or "status") against db using
// the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	// A correlation ID ties together every log line of one migration run.
	log := logger.With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	provider, err := newProvider(db, dialect)
	if err != nil {
		return err
	}

	startTime := time.Now()
	log.Info("starting migration operation")

	switch command {
	case MigrateUp:
		results, err := provider.Up(ctx)
		for _, r := range results {
			logResult(log, r)
		}
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
	case MigrateDown:
		result, err := provider.Down(ctx)
		if result != nil {
			logResult(log, result)
		}
		if err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				log.Info("no migrations to roll back")
				break
			}
			return fmt.Errorf("migration down failed: %w", err)
		}
	case MigrateStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
		for _, s := range statuses {
			log.Info("migration status",
				slog.Int64("version", s.Source.Version),
				slog.String("path", s.Source.Path),
				slog.String("state", string(s.State)))
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(ctx context.Context, db *sql.DB, dialect Dialect) (int64, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func logResult(log *slog.Logger, r *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("path", r.Source.Path),
		slog.String("direction", r.Direction),
		slog.Int64("duration_ms", r.Duration.Milliseconds()),
	}
	if r.Error != nil {
		log.Error("migration failed", append(attrs, slog.Any("error", r.Error))...)
		return
	}
	log.Info("migration applied", attrs...)
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/store"
)

const cardColumns = `name, type, description, pwr, vel, flx, com, crv,
	image_prompt, image_url, icon_url, is_valid_language`

const (
	upsertCardSQL = `INSERT INTO cards (` + cardColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
	type = excluded.type,
	description = excluded.description,
	pwr = excluded.pwr,
	vel = excluded.vel,
	flx = excluded.flx,
	com = excluded.com,
	crv = excluded.crv,
	image_prompt = excluded.image_prompt,
	image_url = excluded.image_url,
	icon_url = excluded.icon_url,
	is_valid_language = excluded.is_valid_language`

	existsCardSQL    = `SELECT COUNT(*) FROM cards WHERE name = ?`
	getCardSQL       = `SELECT ` + cardColumns + ` FROM cards WHERE name = ?`
	listCardNamesSQL = `SELECT name FROM cards ORDER BY name`
	listCardsSQL     = `SELECT ` + cardColumns + ` FROM cards ORDER BY name`
	deleteCardSQL    = `DELETE FROM cards WHERE name = ?`
)

// CardStore implements the store.CardStore interface over database/sql.
type CardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger

	upsertSQL string
	existsSQL string
	getSQL    string
	deleteSQL string
}

// NewCardStore creates a new CardStore.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:        db,
		dialect:   dialect,
		logger:    logger.With(slog.String("component", "card_store")),
		upsertSQL: dialect.Rebind(upsertCardSQL),
		existsSQL: dialect.Rebind(existsCardSQL),
		getSQL:    dialect.Rebind(getCardSQL),
		deleteSQL: dialect.Rebind(deleteCardSQL),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// Upsert implements store.CardStore.Upsert.
// Every column of an existing row is replaced; there is no history.
func (s *CardStore) Upsert(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if card == nil {
		return fmt.Errorf("%w: card is nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during upsert",
			slog.String("card", card.Name),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, s.upsertSQL,
		card.Name,
		string(card.Type),
		card.Description,
		card.PWR,
		card.VEL,
		card.FLX,
		card.COM,
		card.CRV,
		card.ImagePrompt,
		card.ImageURL,
		card.IconURL,
		card.IsValidLanguage,
	)
	if err != nil {
		log.Error("failed to upsert card",
			slog.String("card", card.Name),
			slog.Any("error", err))
		return MapError(err)
	}

	log.Debug("card upserted", slog.String("card", card.Name))
	return nil
}

// Exists implements store.CardStore.Exists.
func (s *CardStore) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.existsSQL, name).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check card existence",
			slog.String("card", name),
			slog.Any("error", err))
		return false, MapError(err)
	}
	return count > 0, nil
}

// GetByName implements store.CardStore.GetByName.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) GetByName(ctx context.Context, name string) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx, s.getSQL, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
			slog.String("card", name),
			slog.Any("error", err))
		return nil, MapError(err)
	}
	return card, nil
}

// ListNames implements store.CardStore.ListNames.
func (s *CardStore) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listCardNamesSQL)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, MapError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return names, nil
}

// ListAll implements store.CardStore.ListAll.
func (s *CardStore) ListAll(ctx context.Context) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, listCardsSQL)
	if err != nil {
		log.Error("failed to list cards", slog.Any("error", err))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.Any("error", err))
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// DeleteByName implements store.CardStore.DeleteByName.
func (s *CardStore) DeleteByName(ctx context.Context, name string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.deleteSQL, name)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("card", name),
			slog.Any("error", err))
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("card delete executed",
		slog.String("card", name),
		slog.Int64("rows_affected", affected))
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card     domain.Card
		cardType string
	)
	err := row.Scan(
		&card.Name,
		&cardType,
		&card.Description,
		&card.PWR,
		&card.VEL,
		&card.FLX,
		&card.COM,
		&card.CRV,
		&card.ImagePrompt,
		&card.ImageURL,
		&card.IconURL,
		&card.IsValidLanguage,
	)
	if err != nil {
		return nil, err
	}
	card.Type = domain.CardType(cardType)
	return &card, nil
}

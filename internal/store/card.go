package store

import (
	"context"

	"github.com/devdeck/devdeck-api/internal/domain"
)

// CardStore defines the interface for card data persistence. Cards are
// keyed by their canonical name; callers canonicalize before calling.
type CardStore interface {
	// Upsert inserts the card or replaces every column of the existing row
	// with the same name. The write is atomic per row.
	// Returns ErrInvalidEntity if the card fails domain validation.
	Upsert(ctx context.Context, card *domain.Card) error

	// Exists reports whether a row with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)

	// GetByName retrieves a card by name.
	// Returns ErrCardNotFound if the card does not exist.
	GetByName(ctx context.Context, name string) (*domain.Card, error)

	// ListNames returns the names of every stored card, ordered by name.
	ListNames(ctx context.Context) ([]string, error)

	// ListAll returns every stored card, ordered by name. An empty store
	// yields an empty, non-nil slice.
	ListAll(ctx context.Context) ([]*domain.Card, error)

	// DeleteByName removes the card and returns the number of rows removed
	// (0 or 1). A missing card is not an error.
	DeleteByName(ctx context.Context, name string) (int64, error)
}

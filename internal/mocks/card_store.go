package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/store"
)

// MockCardStore is an in-memory store.CardStore. Function fields, when set,
// replace the in-memory behavior of the matching method.
type MockCardStore struct {
	UpsertFn       func(ctx context.Context, card *domain.Card) error
	ExistsFn       func(ctx context.Context, name string) (bool, error)
	GetByNameFn    func(ctx context.Context, name string) (*domain.Card, error)
	ListNamesFn    func(ctx context.Context) ([]string, error)
	ListAllFn      func(ctx context.Context) ([]*domain.Card, error)
	DeleteByNameFn func(ctx context.Context, name string) (int64, error)

	mu      sync.Mutex
	cards   map[string]*domain.Card
	upserts []string
}

var _ store.CardStore = (*MockCardStore)(nil)

// NewMockCardStore creates a store seeded with cards.
func NewMockCardStore(cards ...*domain.Card) *MockCardStore {
	m := &MockCardStore{cards: make(map[string]*domain.Card)}
	for _, c := range cards {
		cp := *c
		m.cards[c.Name] = &cp
	}
	return m
}

func (m *MockCardStore) lazyInit() {
	if m.cards == nil {
		m.cards = make(map[string]*domain.Card)
	}
}

// Upsert implements store.CardStore.
func (m *MockCardStore) Upsert(ctx context.Context, card *domain.Card) error {
	m.mu.Lock()
	m.upserts = append(m.upserts, card.Name)
	m.mu.Unlock()

	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, card)
	}
	if err := card.Validate(); err != nil {
		return store.NewStoreError("card", "upsert", "invalid card", store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lazyInit()
	cp := *card
	m.cards[card.Name] = &cp
	return nil
}

// Exists implements store.CardStore.
func (m *MockCardStore) Exists(ctx context.Context, name string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cards[name]
	return ok, nil
}

// GetByName implements store.CardStore.
func (m *MockCardStore) GetByName(ctx context.Context, name string) (*domain.Card, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[name]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

// ListNames implements store.CardStore.
func (m *MockCardStore) ListNames(ctx context.Context) ([]string, error) {
	if m.ListNamesFn != nil {
		return m.ListNamesFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.cards))
	for name := range m.cards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListAll implements store.CardStore.
func (m *MockCardStore) ListAll(ctx context.Context) ([]*domain.Card, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cards := make([]*domain.Card, 0, len(m.cards))
	for _, c := range m.cards {
		cp := *c
		cards = append(cards, &cp)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards, nil
}

// DeleteByName implements store.CardStore.
func (m *MockCardStore) DeleteByName(ctx context.Context, name string) (int64, error) {
	if m.DeleteByNameFn != nil {
		return m.DeleteByNameFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[name]; !ok {
		return 0, nil
	}
	delete(m.cards, name)
	return 1, nil
}

// Card returns a copy of the stored card, if present.
func (m *MockCardStore) Card(name string) (*domain.Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[name]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Upserts returns the names passed to Upsert, in call order.
func (m *MockCardStore) Upserts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.upserts...)
}

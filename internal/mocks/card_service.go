package mocks

import (
	"context"
	"sync"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/service"
)

// MockCardService implements service.CardService for testing
type MockCardService struct {
	// Custom behavior functions
	ProduceCardFn func(ctx context.Context, name string, force bool) (*domain.Card, error)
	SaveCardFn    func(ctx context.Context, card *domain.Card) error
	CardExistsFn  func(ctx context.Context, name string) (bool, error)
	CreateCardFn  func(ctx context.Context, name string) (*domain.Card, bool, error)
	RefreshCardFn func(ctx context.Context, name string) (*domain.Card, error)
	ProduceBulkFn func(ctx context.Context, names []string) *service.BulkResult
	RefreshAllFn  func(ctx context.Context) (*service.RefreshResult, error)
	GetCardFn     func(ctx context.Context, name string) (*domain.Card, error)
	ListCardsFn   func(ctx context.Context) ([]*domain.Card, error)
	DeleteCardFn  func(ctx context.Context, name string) (int64, error)

	// Default return values
	Card         *domain.Card
	Cards        []*domain.Card
	DefaultError error

	mu        sync.Mutex
	bulkNames [][]string
	contexts  []context.Context
}

var _ service.CardService = (*MockCardService)(nil)

func (m *MockCardService) record(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts = append(m.contexts, ctx)
}

// ProduceCard implements the CardService.ProduceCard method
func (m *MockCardService) ProduceCard(ctx context.Context, name string, force bool) (*domain.Card, error) {
	m.record(ctx)
	if m.ProduceCardFn != nil {
		return m.ProduceCardFn(ctx, name, force)
	}
	return m.Card, m.DefaultError
}

// SaveCard implements the CardService.SaveCard method
func (m *MockCardService) SaveCard(ctx context.Context, card *domain.Card) error {
	m.record(ctx)
	if m.SaveCardFn != nil {
		return m.SaveCardFn(ctx, card)
	}
	return m.DefaultError
}

// CardExists implements the CardService.CardExists method
func (m *MockCardService) CardExists(ctx context.Context, name string) (bool, error) {
	m.record(ctx)
	if m.CardExistsFn != nil {
		return m.CardExistsFn(ctx, name)
	}
	return m.Card != nil, m.DefaultError
}

// CreateCard implements the CardService.CreateCard method
func (m *MockCardService) CreateCard(ctx context.Context, name string) (*domain.Card, bool, error) {
	m.record(ctx)
	if m.CreateCardFn != nil {
		return m.CreateCardFn(ctx, name)
	}
	return m.Card, m.DefaultError == nil, m.DefaultError
}

// RefreshCard implements the CardService.RefreshCard method
func (m *MockCardService) RefreshCard(ctx context.Context, name string) (*domain.Card, error) {
	m.record(ctx)
	if m.RefreshCardFn != nil {
		return m.RefreshCardFn(ctx, name)
	}
	return m.Card, m.DefaultError
}

// ProduceBulk implements the CardService.ProduceBulk method
func (m *MockCardService) ProduceBulk(ctx context.Context, names []string) *service.BulkResult {
	m.record(ctx)
	m.mu.Lock()
	m.bulkNames = append(m.bulkNames, append([]string(nil), names...))
	m.mu.Unlock()

	if m.ProduceBulkFn != nil {
		return m.ProduceBulkFn(ctx, names)
	}
	result := &service.BulkResult{}
	for _, name := range names {
		result.Successful++
		result.Items = append(result.Items, service.ItemResult{Name: name, Success: true, IsValidLanguage: true})
	}
	return result
}

// RefreshAll implements the CardService.RefreshAll method
func (m *MockCardService) RefreshAll(ctx context.Context) (*service.RefreshResult, error) {
	m.record(ctx)
	if m.RefreshAllFn != nil {
		return m.RefreshAllFn(ctx)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return &service.RefreshResult{Successful: []string{}, Failed: []service.ItemResult{}}, nil
}

// GetCard implements the CardService.GetCard method
func (m *MockCardService) GetCard(ctx context.Context, name string) (*domain.Card, error) {
	m.record(ctx)
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, name)
	}
	return m.Card, m.DefaultError
}

// ListCards implements the CardService.ListCards method
func (m *MockCardService) ListCards(ctx context.Context) ([]*domain.Card, error) {
	m.record(ctx)
	if m.ListCardsFn != nil {
		return m.ListCardsFn(ctx)
	}
	return m.Cards, m.DefaultError
}

// DeleteCard implements the CardService.DeleteCard method
func (m *MockCardService) DeleteCard(ctx context.Context, name string) (int64, error) {
	m.record(ctx)
	if m.DeleteCardFn != nil {
		return m.DeleteCardFn(ctx, name)
	}
	return 0, m.DefaultError
}

// BulkCalls returns the name lists passed to ProduceBulk, in call order.
func (m *MockCardService) BulkCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.bulkNames...)
}

// Contexts returns the contexts passed to every method, in call order.
func (m *MockCardService) Contexts() []context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]context.Context(nil), m.contexts...)
}

package mocks

import (
	"context"
	"sync"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
)

// PNGBytes is a minimal PNG header that format detection recognizes.
var PNGBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// ValidCardText returns a well-formed generation result for name.
func ValidCardText(name string) *domain.CardText {
	return &domain.CardText{
		Name:            name,
		Type:            domain.CardTypeLanguage,
		Description:     name + " is a programming language.",
		Stats:           domain.Stats{PWR: 70, VEL: 80, FLX: 60, COM: 90, CRV: 40},
		ImagePrompt:     "a heroic portrait of " + name,
		IsValidLanguage: true,
	}
}

// InvalidCardText returns the result the text generator gives for a name
// that is not a technology.
func InvalidCardText(name string) *domain.CardText {
	return &domain.CardText{Name: name, IsValidLanguage: false}
}

// MockTextGenerator implements generation.TextGenerator for testing
type MockTextGenerator struct {
	// GenerateCardTextFn allows test cases to mock the GenerateCardText behavior
	GenerateCardTextFn func(ctx context.Context, name string) (*domain.CardText, error)

	// Err is returned when GenerateCardTextFn is nil and non-nil.
	Err error

	mu    sync.Mutex
	names []string
}

var _ generation.TextGenerator = (*MockTextGenerator)(nil)

// GenerateCardText implements the generation.TextGenerator interface. Without
// a custom function it returns ValidCardText(name).
func (m *MockTextGenerator) GenerateCardText(ctx context.Context, name string) (*domain.CardText, error) {
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()

	if m.GenerateCardTextFn != nil {
		return m.GenerateCardTextFn(ctx, name)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return ValidCardText(name), nil
}

// Calls returns the names passed to GenerateCardText, in call order.
func (m *MockTextGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

// CallCount returns how many times GenerateCardText was called.
func (m *MockTextGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.names)
}

// MockImageGenerator implements generation.ImageGenerator for testing
type MockImageGenerator struct {
	// GenerateImageFn allows test cases to mock the GenerateImage behavior
	GenerateImageFn func(ctx context.Context, prompt string) (*generation.Image, error)

	// Err is returned when GenerateImageFn is nil and non-nil.
	Err error

	mu      sync.Mutex
	prompts []string
}

var _ generation.ImageGenerator = (*MockImageGenerator)(nil)

// GenerateImage implements the generation.ImageGenerator interface. Without
// a custom function it returns a small PNG.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (*generation.Image, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, prompt)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &generation.Image{Data: PNGBytes, Format: "png"}, nil
}

// Calls returns the prompts passed to GenerateImage, in call order.
func (m *MockImageGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// CallCount returns how many times GenerateImage was called.
func (m *MockImageGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// MockGeneratorThatFails returns an image generator that always fails.
func MockGeneratorThatFails() *MockImageGenerator {
	return &MockImageGenerator{Err: generation.ErrGenerationFailed}
}

package mocks

import (
	"context"
	"sync"
)

// DefaultPlaceholder is the placeholder reference MockAssetStore reports
// unless PlaceholderRef is set.
const DefaultPlaceholder = "/public/images/placeholder.png"

// MockAssetStore keeps assets in memory. Images maps a filename base to its
// reference; Icons likewise for curated icons.
type MockAssetStore struct {
	// WriteFn replaces the in-memory write when set.
	WriteFn func(ctx context.Context, base, format string, data []byte) (string, error)

	PlaceholderRef string

	mu     sync.Mutex
	images map[string]string
	icons  map[string]string
	writes []string
}

// NewMockAssetStore creates an empty asset store.
func NewMockAssetStore() *MockAssetStore {
	return &MockAssetStore{
		images: make(map[string]string),
		icons:  make(map[string]string),
	}
}

// AddImage registers an existing image for base.
func (m *MockAssetStore) AddImage(base, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.images == nil {
		m.images = make(map[string]string)
	}
	m.images[base] = ref
}

// AddIcon registers a curated icon for base.
func (m *MockAssetStore) AddIcon(base, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.icons == nil {
		m.icons = make(map[string]string)
	}
	m.icons[base] = ref
}

// FindExisting returns the registered image for base.
func (m *MockAssetStore) FindExisting(base string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.images[base]
	return ref, ok
}

// Write records the write and registers /public/images/{base}.{format}.
func (m *MockAssetStore) Write(ctx context.Context, base, format string, data []byte) (string, error) {
	m.mu.Lock()
	m.writes = append(m.writes, base+"."+format)
	m.mu.Unlock()

	if m.WriteFn != nil {
		return m.WriteFn(ctx, base, format, data)
	}

	ref := "/public/images/" + base + "." + format
	m.AddImage(base, ref)
	return ref, nil
}

// FindIcon returns the registered icon for base.
func (m *MockAssetStore) FindIcon(base string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.icons[base]
	return ref, ok
}

// Placeholder returns PlaceholderRef or DefaultPlaceholder.
func (m *MockAssetStore) Placeholder() string {
	if m.PlaceholderRef != "" {
		return m.PlaceholderRef
	}
	return DefaultPlaceholder
}

// Writes returns the "{base}.{format}" names written, in call order.
func (m *MockAssetStore) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

package core_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/notegraph/pkg/core"
)

// MockStorage implements core.Storage in memory.
// It deliberately does NOT implement core.Watchable or core.Syncable.
type MockStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	failSet error
	failGet error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{data: make(map[string][]byte)}
}

func (m *MockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MockStorage) Set(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.sets++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockStorage) Initialize(ctx context.Context) error { return nil }

func (m *MockStorage) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(value)
}

func (m *MockStorage) raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[key])
}

var errDiskFull = errors.New("disk full")

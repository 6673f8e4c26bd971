package plugin

import (
	"context"
	"sync"
)

// Storage is a key/value store partitioned by plugin id.
type Storage interface {
	Get(ctx context.Context, pluginID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, pluginID, key, value string) error
	Delete(ctx context.Context, pluginID, key string) error
}

// MemoryStorage is an in-process Storage.
// All methods are safe for concurrent use.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]string)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, pluginID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[pluginID][key]
	return v, ok, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, pluginID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[pluginID] == nil {
		m.data[pluginID] = make(map[string]string)
	}
	m.data[pluginID][key] = value
	return nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(_ context.Context, pluginID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[pluginID], key)
	return nil
}

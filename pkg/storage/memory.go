package storage

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory storage implementation.
type MemoryStorage struct {
	mu       sync.RWMutex
	values   map[string][]byte
	watchers map[string]map[uint64]func()
	nextID   uint64
	closed   bool
}

// NewMemory creates a new in-memory storage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		values:   make(map[string][]byte),
		watchers: make(map[string]map[uint64]func()),
	}
}

// Get returns a copy of the stored value.
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}

	// Return a copy to prevent mutations
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value and notifies watchers of key.
func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	fns := m.watchersFor(key)
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// Delete removes key and notifies watchers if it existed.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	_, existed := m.values[key]
	delete(m.values, key)
	var fns []func()
	if existed {
		fns = m.watchersFor(key)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// Watch registers fn to run after every Set or Delete of key.
func (m *MemoryStorage) Watch(key string, fn func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	m.nextID++
	id := m.nextID
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[uint64]func())
	}
	m.watchers[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.watchers[key], id)
		})
	}, nil
}

// watchersFor copies the watchers of key. Caller must hold mu.
func (m *MemoryStorage) watchersFor(key string) []func() {
	fns := make([]func(), 0, len(m.watchers[key]))
	for _, fn := range m.watchers[key] {
		fns = append(fns, fn)
	}
	return fns
}

// Close shuts down the storage and drops all values.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	m.values = nil
	m.watchers = nil
	return nil
}

// Len returns the number of stored keys.
// This is for monitoring/testing purposes.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process map.
// Used in tests and as the degraded mode when Redis is unavailable,
// mirroring the service's cache-less fallback behavior.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// MemoryStore implements Store (compile-time check).
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Get retrieves the state for a session ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	// コピーを返し、呼び出し元の変更がストアに波及しないようにする
	out := st
	return &out, nil
}

// Save persists the state for a session ID.
func (m *MemoryStore) Save(ctx context.Context, id string, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = *st
	return nil
}

// Delete removes the state for a session ID.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

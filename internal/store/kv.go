package store

import (
	"context"
	"sync"
)

// KeyValue is the storage capability the document store depends on.
// Get reports found=false, with a nil error, for a missing key.
//
// Update is an atomic read-modify-write of one key, also against other
// processes sharing the backend. fn receives the current value and returns
// the replacement; when the read or fn fails nothing is written. fn may be
// called more than once and must not call back into the KeyValue.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = stored
	return nil
}

func (m *MemoryKV) Update(_ context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	value, found := m.data[key]
	if found {
		current = make([]byte, len(value))
		copy(current, value)
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	stored := make([]byte, len(next))
	copy(stored, next)
	m.data[key] = stored
	return nil
}

func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

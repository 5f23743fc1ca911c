package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in a map; used by tests
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

func (mb *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	value, ok := mb.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (mb *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.data[key] = append([]byte(nil), value...)
	return nil
}

func (mb *MemoryBackend) Delete(ctx context.Context, key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	delete(mb.data, key)
	return nil
}

func (mb *MemoryBackend) Clear(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.data = make(map[string][]byte)
	return nil
}

func (mb *MemoryBackend) Close() error {
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Get when the key has never been set
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value store holding whole documents per key
type Backend interface {
	// Get returns the stored value or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Clear removes every key
	Clear(ctx context.Context) error

	Close() error
}

// Open creates the backend of the given type rooted at path
func Open(backendType, path string, logger *zap.Logger) (Backend, error) {
	switch backendType {
	case "", BackendFile:
		return NewFileBackend(path, logger)
	case BackendSQLite:
		return NewSQLiteBackend(path, logger)
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backendType)
	}
}

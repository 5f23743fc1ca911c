package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const fileExt = ".json"

// FileBackend stores each key's raw value in a <key>.json file inside a directory
type FileBackend struct {
	dir    string
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewFileBackend creates the state directory if needed
func NewFileBackend(dir string, logger *zap.Logger) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &FileBackend{
		dir:    dir,
		logger: logger,
	}, nil
}

// Get reads the file for key
func (fb *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	data, err := os.ReadFile(fb.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	return data, nil
}

// Set writes the file for key through a temp file and rename
func (fb *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	tmp, err := os.CreateTemp(fb.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, fb.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	fb.logger.Debug("State file saved",
		zap.String("key", key),
		zap.Int("bytes", len(value)))

	return nil
}

// Delete removes the file for key
func (fb *FileBackend) Delete(ctx context.Context, key string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := os.Remove(fb.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// Clear removes every state file in the directory
func (fb *FileBackend) Clear(ctx context.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	entries, err := os.ReadDir(fb.dir)
	if err != nil {
		return fmt.Errorf("failed to list state directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(fb.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete state file: %w", err)
		}
		removed++
	}

	fb.logger.Info("State directory cleared",
		zap.String("dir", fb.dir),
		zap.Int("removed", removed))

	return nil
}

// Close is a no-op for files
func (fb *FileBackend) Close() error {
	return nil
}

func (fb *FileBackend) path(key string) string {
	return filepath.Join(fb.dir, key+fileExt)
}

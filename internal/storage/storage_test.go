package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	logger := zap.NewNop()

	file, err := NewFileBackend(filepath.Join(t.TempDir(), "state"), logger)
	require.NoError(t, err)

	sqlite, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "attendance.db"), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		file.Close()
		sqlite.Close()
	})

	return map[string]Backend{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendMemory: NewMemoryBackend(),
	}
}

func TestBackend_Contract(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := backend.Get(ctx, "attendance_data")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, backend.Set(ctx, "attendance_data", []byte(`{"userName":"Asha"}`)))
			require.NoError(t, backend.Set(ctx, "userName", []byte("Asha")))

			got, err := backend.Get(ctx, "attendance_data")
			require.NoError(t, err)
			assert.Equal(t, `{"userName":"Asha"}`, string(got))

			// whole-value overwrite
			require.NoError(t, backend.Set(ctx, "attendance_data", []byte(`{}`)))
			got, err = backend.Get(ctx, "attendance_data")
			require.NoError(t, err)
			assert.Equal(t, `{}`, string(got))

			require.NoError(t, backend.Delete(ctx, "userName"))
			require.NoError(t, backend.Delete(ctx, "userName"), "deleting a missing key")
			_, err = backend.Get(ctx, "userName")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, backend.Clear(ctx))
			_, err = backend.Get(ctx, "attendance_data")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileBackend_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	backend, err := NewFileBackend(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, backend.Set(context.Background(), "attendance_data", []byte(`{"a":1}`)))

	data, err := os.ReadFile(filepath.Join(dir, "attendance_data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	// values are stored verbatim, even when they are not JSON
	require.NoError(t, backend.Set(context.Background(), "userName", []byte("Asha")))
	data, err = os.ReadFile(filepath.Join(dir, "userName.json"))
	require.NoError(t, err)
	assert.Equal(t, "Asha", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestFileBackend_ClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "holidays.txt"), []byte("2025-12-25"), 0o644))
	require.NoError(t, backend.Set(context.Background(), "userName", []byte("Asha")))

	require.NoError(t, backend.Clear(context.Background()))

	_, err = os.Stat(filepath.Join(dir, "holidays.txt"))
	assert.NoError(t, err)
}

func TestSQLiteBackend_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "attendance.db")

	first, err := NewSQLiteBackend(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "userName", []byte("Asha")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteBackend(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "userName")
	require.NoError(t, err)
	assert.Equal(t, "Asha", string(got))
}

func TestSQLiteBackend_InMemory(t *testing.T) {
	ctx := context.Background()
	backend, err := NewSQLiteBackend(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Set(ctx, "k", []byte("v")))
	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"default is file", "", false},
		{"file", BackendFile, false},
		{"sqlite", BackendSQLite, false},
		{"memory", BackendMemory, false},
		{"unknown", "redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store")
			backend, err := Open(tt.backend, path, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, backend.Close())
		})
	}
}

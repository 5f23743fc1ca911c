package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteBackend stores keys in a single SQLite table
type SQLiteBackend struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewSQLiteBackend opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteBackend(dbPath string, logger *zap.Logger) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	backend := &SQLiteBackend{
		db:     db,
		logger: logger,
	}
	if err := backend.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Debug("SQLite storage opened", zap.String("path", dbPath))

	return backend, nil
}

// migrate creates the database schema
func (sb *SQLiteBackend) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`

	_, err := sb.db.Exec(schema)
	return err
}

// Get returns the value stored under key
func (sb *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	var value []byte
	err := sb.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	return value, nil
}

// Set upserts the value for key
func (sb *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}

	sb.logger.Debug("Key stored",
		zap.String("key", key),
		zap.Int("bytes", len(value)))

	return nil
}

// Delete removes key
func (sb *SQLiteBackend) Delete(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, err := sb.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Clear removes every key
func (sb *SQLiteBackend) Clear(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	res, err := sb.db.ExecContext(ctx, `DELETE FROM kv_store`)
	if err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	removed, _ := res.RowsAffected()
	sb.logger.Info("SQLite storage cleared", zap.Int64("removed", removed))

	return nil
}

// Close closes the database connection
func (sb *SQLiteBackend) Close() error {
	return sb.db.Close()
}

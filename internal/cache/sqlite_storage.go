package cache

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStorage keeps cache envelopes in the cache_entries table of the
// shared sqlite database. It is an alternative to FileStorage for
// deployments that already carry a database file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage wraps an existing database connection.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Get reads the value stored under key.
func (s *SQLiteStorage) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM cache_entries WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, nil
}

// Set writes the value under key, replacing any previous value.
func (s *SQLiteStorage) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an
// error.
func (s *SQLiteStorage) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

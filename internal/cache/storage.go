package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Storage implementations when a key has no
// value.
var ErrNotFound = errors.New("cache key not found")

// Storage is a durable key-value store for cache envelopes. It must
// tolerate a hostile environment (missing directories, quota limits);
// callers treat any error as a cache miss.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// FileStorage keeps one JSON file per key under a base directory.
type FileStorage struct {
	basePath string
}

// NewFileStorage creates a FileStorage and ensures the base directory exists.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", basePath, err)
	}
	return &FileStorage{basePath: basePath}, nil
}

func (s *FileStorage) keyPath(key string) string {
	return filepath.Join(s.basePath, key+".json")
}

// Get reads the value stored under key.
func (s *FileStorage) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, nil
}

// Set writes the value under key, replacing any previous value.
func (s *FileStorage) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("refusing to store invalid JSON under %s", key)
	}
	if err := os.WriteFile(s.keyPath(key), value, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an
// error.
func (s *FileStorage) Remove(key string) error {
	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

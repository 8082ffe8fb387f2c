package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mealsync/internal/database"
)

func TestSQLiteStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "cache_sqlite_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	db, err := database.NewDB(filepath.Join(tempDir, "cache.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	storage := NewSQLiteStorage(db.SQL)
	key := Key("user-1")

	t.Run("Get-Missing", func(t *testing.T) {
		if _, err := storage.Get(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SetAndGet", func(t *testing.T) {
		if err := storage.Set(key, []byte(`{"plans":[]}`)); err != nil {
			t.Fatalf("Failed to set value: %v", err)
		}
		got, err := storage.Get(key)
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(got) != `{"plans":[]}` {
			t.Errorf("Unexpected value: %s", got)
		}
	})

	t.Run("Set-Overwrites", func(t *testing.T) {
		if err := storage.Set(key, []byte(`{"plans":[{"id":"p1"}]}`)); err != nil {
			t.Fatalf("Failed to overwrite value: %v", err)
		}
		got, err := storage.Get(key)
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(got) != `{"plans":[{"id":"p1"}]}` {
			t.Errorf("Expected the replaced value, got %s", got)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := storage.Remove(key); err != nil {
			t.Fatalf("Failed to remove value: %v", err)
		}
		if _, err := storage.Get(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after removal, got %v", err)
		}
	})

	t.Run("Remove-Missing", func(t *testing.T) {
		if err := storage.Remove("never-set"); err != nil {
			t.Errorf("Expected removing a missing key to succeed, got %v", err)
		}
	})
}

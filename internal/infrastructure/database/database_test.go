package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB opens a database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(Config{
		Path:        dbPath,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db, err := Open(Config{
			Path:        dbPath,
			WALMode:     true,
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

		db, err := Open(Config{
			Path:        dbPath,
			WALMode:     true,
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		dir := filepath.Dir(dbPath)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("returns path", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db, err := Open(Config{
			Path:        dbPath,
			WALMode:     true,
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Closing again should not panic
	if err := db.Close(); err == nil {
		t.Log("second Close() returned nil")
	}
}

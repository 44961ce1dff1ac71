// Package storagetest opens migrated SQLite databases for store and handler tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"brickyard/internal/adapters/storage"
)

// OpenDB returns a migrated file-backed SQLite database in a temp dir.
// The database is closed when the test ends.
func OpenDB(t testing.TB) *storage.TimedDB {
	t.Helper()
	dsn := storage.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	db, err := storage.Open(context.Background(), storage.SQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, storage.SQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return storage.NewTimedDB(db, storage.SQLite, nil)
}

package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a fresh in-memory database with the schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, MemoryPath)
}

// NewTestFileDB returns a database file in a temporary directory. Unlike the
// in-memory variant it allows several connections, so concurrent writers
// really contend for the lock.
func NewTestFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, filepath.Join(t.TempDir(), "orodjarna.sqlite3"))
}

func newTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	database, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}
	return database
}

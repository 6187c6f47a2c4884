package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
)

// OpenTestDB creates a migrated database in a per-test temporary directory
// and closes it when the test ends.
func OpenTestDB(t testing.TB) *sqlstore.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

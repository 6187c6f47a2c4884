// Package sqlite opens the embedded SQLite backend and applies its schema.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
)

const busyTimeoutMillis = 5000

// dsn enables a busy timeout and foreign keys on every pooled connection
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, busyTimeoutMillis)
}

// NewDB opens (creating if needed) the database file at path.
// SQLite allows a single writer, so the pool is held to one connection and
// every unit of work runs strictly one after another.
func NewDB(path string) (*sqlstore.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return sqlstore.NewDB(db, sqlstore.DialectSQLite), nil
}

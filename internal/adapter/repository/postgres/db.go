// Package postgres opens the PostgreSQL backend and applies its schema.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
)

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=ledger sslmode=disable"
func NewDB(connectionString string) (*sqlstore.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlstore.NewDB(db, sqlstore.DialectPostgres), nil
}

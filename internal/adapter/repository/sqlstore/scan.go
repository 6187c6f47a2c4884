package sqlstore

import (
	"fmt"
	"time"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// Dates and timestamps are bound as strings in every dialect. Postgres hands
// DATE/TIMESTAMPTZ back as time.Time, which database/sql renders as RFC3339
// when scanning into a string, so parsing only relies on the prefix.

func formatDate(t time.Time) string {
	return domain.NormalizeDate(t).Format(domain.DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseDate(raw string) (time.Time, error) {
	if len(raw) < len(domain.DateLayout) {
		return time.Time{}, fmt.Errorf("failed to parse date %q", raw)
	}

	t, err := time.Parse(domain.DateLayout, raw[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", raw, err)
	}
	return t, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const transactionColumns = `id, user_id, amount_cents, type, date, category, description, created_at, updated_at`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountCents int64
	var txType, date, createdAt, updatedAt string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&amountCents,
		&txType,
		&date,
		&tx.Category,
		&tx.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount = domain.FromMinorUnits(amountCents)
	tx.Type = domain.TransactionType(txType)

	if tx.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if tx.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if tx.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &tx, nil
}

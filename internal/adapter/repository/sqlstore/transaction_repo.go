package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// ListInRange retrieves a user's transactions between two dates (inclusive), newest first
func (r *transactionRepository) ListInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CategoryTotals sums amounts per (type, category) between two dates (inclusive).
// Categories are not part of any rollup key, so this reads the ledger itself.
func (r *transactionRepository) CategoryTotals(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryStat, error) {
	query := `
		SELECT type, category, SUM(amount_cents) AS total
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY type, category
		ORDER BY total DESC, category ASC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.CategoryStat, 0)
	for rows.Next() {
		var stat domain.CategoryStat
		var txType string
		var totalCents int64

		if err := rows.Scan(&txType, &stat.Category, &totalCents); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}

		stat.Type = domain.TransactionType(txType)
		stat.Amount = domain.FromMinorUnits(totalCents)
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	return stats, nil
}

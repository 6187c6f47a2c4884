package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// auditRepository implements domain.AuditRepository
type auditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit read repository
func NewAuditRepository(db *DB) domain.AuditRepository {
	return &auditRepository{db: db}
}

// snapshotOptions opens a read-only transaction. Postgres needs repeatable
// read for every statement to share one snapshot; SQLite holds its shared
// lock from the first read until the transaction ends.
func (r *auditRepository) snapshotOptions() *sql.TxOptions {
	if r.db.Dialect == DialectPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{ReadOnly: true}
}

// SnapshotTotals sums the ledger and both rollup tiers of one user from one snapshot
func (r *auditRepository) SnapshotTotals(ctx context.Context, userID string) (domain.AuditTotals, error) {
	dbTx, err := r.db.BeginTx(ctx, r.snapshotOptions())
	if err != nil {
		return domain.AuditTotals{}, fmt.Errorf("failed to begin audit snapshot: %w", err)
	}
	defer dbTx.Rollback()

	var totals domain.AuditTotals

	if totals.Ledger, err = r.ledgerTotals(ctx, dbTx, userID); err != nil {
		return domain.AuditTotals{}, err
	}
	if totals.Month, err = r.rollupTotals(ctx, dbTx, monthHistoryTarget.table, userID); err != nil {
		return domain.AuditTotals{}, err
	}
	if totals.Year, err = r.rollupTotals(ctx, dbTx, yearHistoryTarget.table, userID); err != nil {
		return domain.AuditTotals{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return domain.AuditTotals{}, fmt.Errorf("failed to close audit snapshot: %w", err)
	}

	return totals, nil
}

func (r *auditRepository) ledgerTotals(ctx context.Context, q querier, userID string) (domain.Balance, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ?
	`

	var income, expense int64
	if err := q.QueryRowContext(ctx, r.db.Dialect.Rebind(query), userID).Scan(&income, &expense); err != nil {
		return domain.Balance{}, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return domain.Balance{
		Income:  domain.FromMinorUnits(income),
		Expense: domain.FromMinorUnits(expense),
	}, nil
}

func (r *auditRepository) rollupTotals(ctx context.Context, q querier, table, userID string) (domain.Balance, error) {
	query := `SELECT COALESCE(SUM(income_cents), 0), COALESCE(SUM(expense_cents), 0) FROM ` + table + ` WHERE user_id = ?`

	var income, expense int64
	if err := q.QueryRowContext(ctx, r.db.Dialect.Rebind(query), userID).Scan(&income, &expense); err != nil {
		return domain.Balance{}, fmt.Errorf("failed to sum %s: %w", table, err)
	}

	return domain.Balance{
		Income:  domain.FromMinorUnits(income),
		Expense: domain.FromMinorUnits(expense),
	}, nil
}

// ListUserIDs lists every user with ledger or rollup rows
func (r *auditRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id FROM transactions
		UNION
		SELECT user_id FROM month_history
		UNION
		SELECT user_id FROM year_history
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

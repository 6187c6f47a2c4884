package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/ledger-backend/internal/domain"
)

// unitOfWork implements domain.UnitOfWork
type unitOfWork struct {
	db        *DB
	isolation sql.IsolationLevel
}

// NewUnitOfWork creates a unit of work running every unit at the given isolation level
func NewUnitOfWork(db *DB, isolation sql.IsolationLevel) domain.UnitOfWork {
	return &unitOfWork{db: db, isolation: isolation}
}

// WithinTx runs fn inside one database transaction.
// Any error from fn, a cancelled context, or a failed commit leaves nothing behind.
func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	dbTx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: u.isolation})
	if err != nil {
		return domain.NewStorageError("begin", err)
	}
	defer dbTx.Rollback()

	if err := fn(&ledgerTx{q: dbTx, dialect: u.db.Dialect}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return domain.NewStorageError("commit", err)
	}

	return nil
}

// ledgerTx implements domain.LedgerTx on top of an open *sql.Tx
type ledgerTx struct {
	q       querier
	dialect Dialect
}

func (t *ledgerTx) GetTransaction(ctx context.Context, userID string, id uuid.UUID, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`
	if forUpdate {
		query += t.dialect.lockClause()
	}

	tx, err := scanTransaction(t.q.QueryRowContext(ctx, t.dialect.Rebind(query), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("transaction", id.String())
		}
		return nil, domain.NewStorageError("get transaction", err)
	}

	return tx, nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount_cents, type, date, category, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := t.q.ExecContext(ctx, t.dialect.Rebind(query),
		tx.ID,
		tx.UserID,
		domain.ToMinorUnits(tx.Amount),
		string(tx.Type),
		formatDate(tx.Date),
		tx.Category,
		tx.Description,
		formatTimestamp(tx.CreatedAt),
		formatTimestamp(tx.UpdatedAt),
	)
	if err != nil {
		return domain.NewStorageError("insert transaction", err)
	}

	return nil
}

func (t *ledgerTx) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount_cents = ?, date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := t.q.ExecContext(ctx, t.dialect.Rebind(query),
		domain.ToMinorUnits(tx.Amount),
		formatDate(tx.Date),
		formatTimestamp(tx.UpdatedAt),
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return domain.NewStorageError("update transaction", err)
	}

	return expectOneRow(result, "update transaction", domain.NewNotFoundError("transaction", tx.ID.String()))
}

func (t *ledgerTx) DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = ? AND user_id = ?`

	result, err := t.q.ExecContext(ctx, t.dialect.Rebind(query), id, userID)
	if err != nil {
		return domain.NewStorageError("delete transaction", err)
	}

	return expectOneRow(result, "delete transaction", domain.NewNotFoundError("transaction", id.String()))
}

// ApplyRollupDelta turns a delta into a single statement so concurrent units
// never lose each other's updates:
//   - increments upsert the row and add to the stored value
//   - decrements subtract in place and only match rows that can absorb them
func (t *ledgerTx) ApplyRollupDelta(ctx context.Context, userID string, delta domain.RollupDelta) error {
	target, err := rollupTargetFor(delta)
	if err != nil {
		return domain.NewStorageError("apply rollup delta", err)
	}

	cents := domain.ToMinorUnits(delta.Amount.Abs())
	if cents == 0 {
		return nil
	}

	if delta.Amount.IsPositive() {
		var income, expense int64
		if delta.Type == domain.TransactionTypeIncome {
			income = cents
		} else {
			expense = cents
		}

		args := append(target.keyArgs(userID, delta), income, expense)
		if _, err := t.q.ExecContext(ctx, t.dialect.Rebind(target.upsertQuery()), args...); err != nil {
			return domain.NewStorageError("increment "+target.table, err)
		}
		return nil
	}

	args := append([]any{cents}, target.keyArgs(userID, delta)...)
	args = append(args, cents)
	result, err := t.q.ExecContext(ctx, t.dialect.Rebind(target.decrementQuery(delta.Type)), args...)
	if err != nil {
		return domain.NewStorageError("decrement "+target.table, err)
	}

	return expectOneRow(result, "decrement "+target.table,
		domain.NewStorageError("decrement "+target.table, fmt.Errorf("%w: %s", domain.ErrRollupDiverged, describeDelta(userID, delta))))
}

func (t *ledgerTx) CategoryExists(ctx context.Context, userID, name string, txType domain.TransactionType) (bool, error) {
	return t.exists(ctx, "categories", userID, name, txType)
}

func (t *ledgerTx) DescriptionExists(ctx context.Context, userID, name string, txType domain.TransactionType) (bool, error) {
	return t.exists(ctx, "descriptions", userID, name, txType)
}

func (t *ledgerTx) exists(ctx context.Context, table, userID, name string, txType domain.TransactionType) (bool, error) {
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE user_id = ? AND name = ? AND type = ?`

	var count int
	if err := t.q.QueryRowContext(ctx, t.dialect.Rebind(query), userID, name, string(txType)).Scan(&count); err != nil {
		return false, domain.NewStorageError("lookup "+table, err)
	}

	return count > 0, nil
}

// expectOneRow returns missing when the statement touched no row
func expectOneRow(result sql.Result, op string, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func describeDelta(userID string, d domain.RollupDelta) string {
	if d.Tier == domain.RollupTierMonth {
		return fmt.Sprintf("user=%s day=%04d-%02d-%02d %s %s", userID, d.Year, int(d.Month), d.Day, d.Type, d.Amount)
	}
	return fmt.Sprintf("user=%s month=%04d-%02d %s %s", userID, d.Year, int(d.Month), d.Type, d.Amount)
}

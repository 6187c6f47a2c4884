package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerTx is the set of operations available inside one atomic unit.
// Everything done through a LedgerTx commits or rolls back together.
type LedgerTx interface {
	// GetTransaction retrieves a transaction owned by userID.
	// When forUpdate is set the row stays locked until the unit ends (where supported).
	// Returns a *NotFoundError when the row is absent or owned by someone else.
	GetTransaction(ctx context.Context, userID string, id uuid.UUID, forUpdate bool) (*Transaction, error)

	// InsertTransaction creates a new ledger row
	InsertTransaction(ctx context.Context, tx *Transaction) error

	// UpdateTransaction persists a new amount and date for an existing row
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	// DeleteTransaction removes a row; returns a *NotFoundError if nothing was deleted
	DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error

	// ApplyRollupDelta applies one signed delta as a single atomic statement.
	// Decrements that find no row able to absorb them fail with ErrRollupDiverged.
	ApplyRollupDelta(ctx context.Context, userID string, delta RollupDelta) error

	// CategoryExists reports whether (userID, name, type) is a known category
	CategoryExists(ctx context.Context, userID, name string, t TransactionType) (bool, error)

	// DescriptionExists reports whether (userID, name, type) is a known description
	DescriptionExists(ctx context.Context, userID, name string, t TransactionType) (bool, error)
}

// UnitOfWork runs a function inside one storage transaction.
// The transaction is committed only if fn returns nil.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// TransactionRepository defines the read side over ledger rows
type TransactionRepository interface {
	// ListInRange retrieves a user's transactions with from <= date <= to, newest first
	ListInRange(ctx context.Context, userID string, from, to time.Time) ([]*Transaction, error)

	// CategoryTotals sums amounts grouped by (type, category) for from <= date <= to
	CategoryTotals(ctx context.Context, userID string, from, to time.Time) ([]CategoryStat, error)
}

// HistoryRepository defines the read side over rollup rows
type HistoryRepository interface {
	// SumDays sums month_history rows with from <= (year, month, day) <= to
	SumDays(ctx context.Context, userID string, from, to DayKey) (Balance, error)

	// ListDays retrieves the month_history rows of one month, ordered by day
	ListDays(ctx context.Context, userID string, month MonthKey) ([]*MonthHistory, error)

	// ListMonths retrieves the year_history rows of one year, ordered by month
	ListMonths(ctx context.Context, userID string, year int) ([]*YearHistory, error)

	// DistinctYears lists the years present in year_history, ascending
	DistinctYears(ctx context.Context, userID string) ([]int, error)
}

// AuditTotals are one user's ledger and rollup sums taken from a single snapshot
type AuditTotals struct {
	Ledger Balance
	Month  Balance
	Year   Balance
}

// AuditRepository defines the reads the rollup audit compares
type AuditRepository interface {
	// ListUserIDs lists every user present in the ledger or the rollups
	ListUserIDs(ctx context.Context) ([]string, error)

	// SnapshotTotals sums a user's transactions, month_history rows and
	// year_history rows inside one read-only transaction, so concurrent
	// units are either fully visible or not at all
	SnapshotTotals(ctx context.Context, userID string) (AuditTotals, error)
}

// DirectoryRepository defines persistence for categories and descriptions
type DirectoryRepository interface {
	// CreateCategory creates a category; duplicates are a *ValidationError
	CreateCategory(ctx context.Context, c *Category) error

	// ListCategories lists a user's categories ordered by name.
	// An empty type lists both kinds.
	ListCategories(ctx context.Context, userID string, t TransactionType) ([]*Category, error)

	// CreateDescription creates a description; duplicates are a *ValidationError
	CreateDescription(ctx context.Context, d *Description) error

	// ListDescriptions lists a user's descriptions ordered by name.
	// An empty type lists both kinds.
	ListDescriptions(ctx context.Context, userID string, t TransactionType) ([]*Description, error)
}

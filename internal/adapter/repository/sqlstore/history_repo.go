package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// historyRepository implements domain.HistoryRepository
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a new rollup read repository
func NewHistoryRepository(db *DB) domain.HistoryRepository {
	return &historyRepository{db: db}
}

// SumDays sums the per-day rollups with from <= (year, month, day) <= to
func (r *historyRepository) SumDays(ctx context.Context, userID string, from, to domain.DayKey) (domain.Balance, error) {
	query := `
		SELECT COALESCE(SUM(income_cents), 0), COALESCE(SUM(expense_cents), 0)
		FROM month_history
		WHERE user_id = ?
			AND (year, month, day) >= (?, ?, ?)
			AND (year, month, day) <= (?, ?, ?)
	`

	var income, expense int64
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query),
		userID,
		from.Year, int(from.Month), from.Day,
		to.Year, int(to.Month), to.Day,
	).Scan(&income, &expense)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("failed to sum month history: %w", err)
	}

	return domain.Balance{
		Income:  domain.FromMinorUnits(income),
		Expense: domain.FromMinorUnits(expense),
	}, nil
}

// ListDays retrieves the per-day rollups of one month, ordered by day
func (r *historyRepository) ListDays(ctx context.Context, userID string, month domain.MonthKey) ([]*domain.MonthHistory, error) {
	query := `
		SELECT day, income_cents, expense_cents
		FROM month_history
		WHERE user_id = ? AND year = ? AND month = ?
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID, month.Year, int(month.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query month history: %w", err)
	}
	defer rows.Close()

	days := make([]*domain.MonthHistory, 0)
	for rows.Next() {
		var income, expense int64
		row := &domain.MonthHistory{UserID: userID, Year: month.Year, Month: month.Month}

		if err := rows.Scan(&row.Day, &income, &expense); err != nil {
			return nil, fmt.Errorf("failed to scan month history: %w", err)
		}

		row.Income = domain.FromMinorUnits(income)
		row.Expense = domain.FromMinorUnits(expense)
		days = append(days, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating month history: %w", err)
	}

	return days, nil
}

// ListMonths retrieves the per-month rollups of one year, ordered by month
func (r *historyRepository) ListMonths(ctx context.Context, userID string, year int) ([]*domain.YearHistory, error) {
	query := `
		SELECT month, income_cents, expense_cents
		FROM year_history
		WHERE user_id = ? AND year = ?
		ORDER BY month ASC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query year history: %w", err)
	}
	defer rows.Close()

	months := make([]*domain.YearHistory, 0)
	for rows.Next() {
		var month int
		var income, expense int64

		if err := rows.Scan(&month, &income, &expense); err != nil {
			return nil, fmt.Errorf("failed to scan year history: %w", err)
		}

		months = append(months, &domain.YearHistory{
			UserID:  userID,
			Year:    year,
			Month:   time.Month(month),
			Income:  domain.FromMinorUnits(income),
			Expense: domain.FromMinorUnits(expense),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating year history: %w", err)
	}

	return months, nil
}

// DistinctYears lists the years with at least one year_history row, ascending
func (r *historyRepository) DistinctYears(ctx context.Context, userID string) ([]int, error) {
	query := `SELECT DISTINCT year FROM year_history WHERE user_id = ? ORDER BY year ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history years: %w", err)
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan history year: %w", err)
		}
		years = append(years, year)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history years: %w", err)
	}

	return years, nil
}

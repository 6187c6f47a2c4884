package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// Timeframe selects the granularity of a history series
type Timeframe string

const (
	TimeframeMonth Timeframe = "month" // one point per day of a month
	TimeframeYear  Timeframe = "year"  // one point per month of a year
)

// ParseTimeframe converts a raw string into a Timeframe
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeMonth, TimeframeYear:
		return Timeframe(s), nil
	default:
		return "", domain.NewValidationError("timeframe", "must be month or year")
	}
}

// HistoryPoint is one bucket of a history series. Label is the day of the
// month or the month of the year, starting at 1.
type HistoryPoint struct {
	Label   int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// StatsService answers period questions from the rollups
type StatsService struct {
	TransactionRepo domain.TransactionRepository
	HistoryRepo     domain.HistoryRepository
	MaxRangeDays    int
	Now             func() time.Time
}

// NewStatsService creates a new StatsService instance.
// maxRangeDays <= 0 disables the range limit.
func NewStatsService(transactionRepo domain.TransactionRepository, historyRepo domain.HistoryRepository, maxRangeDays int) *StatsService {
	return &StatsService{
		TransactionRepo: transactionRepo,
		HistoryRepo:     historyRepo,
		MaxRangeDays:    maxRangeDays,
		Now:             time.Now,
	}
}

// BalanceInRange returns income and expense booked between from and to
// (inclusive, day granularity). Only month_history is read.
func (s *StatsService) BalanceInRange(ctx context.Context, userID string, from, to time.Time) (domain.Balance, error) {
	from, to, err := s.normalizeRange(from, to)
	if err != nil {
		return domain.Balance{}, err
	}

	balance, err := s.HistoryRepo.SumDays(ctx, userID, domain.DayKeyOf(from), domain.DayKeyOf(to))
	if err != nil {
		return domain.Balance{}, domain.NewStorageError("balance in range", err)
	}

	return balance, nil
}

// CategoryBreakdownInRange returns per-category totals between from and to
// (inclusive), largest first
func (s *StatsService) CategoryBreakdownInRange(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryStat, error) {
	from, to, err := s.normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	stats, err := s.TransactionRepo.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return nil, domain.NewStorageError("category breakdown", err)
	}

	return stats, nil
}

// TransactionsInRange lists the ledger rows between from and to (inclusive), newest first
func (s *StatsService) TransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	from, to, err := s.normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	transactions, err := s.TransactionRepo.ListInRange(ctx, userID, from, to)
	if err != nil {
		return nil, domain.NewStorageError("transactions in range", err)
	}

	return transactions, nil
}

// DistinctYears lists the years with booked activity, ascending.
// A user without any activity gets the current UTC year.
func (s *StatsService) DistinctYears(ctx context.Context, userID string) ([]int, error) {
	years, err := s.HistoryRepo.DistinctYears(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("distinct years", err)
	}

	if len(years) == 0 {
		return []int{s.Now().UTC().Year()}, nil
	}

	return years, nil
}

// HistoryData returns a zero-filled series for one month (per day) or one
// year (per month). month is ignored for TimeframeYear.
func (s *StatsService) HistoryData(ctx context.Context, userID string, timeframe Timeframe, year int, month time.Month) ([]HistoryPoint, error) {
	if year < 1 || year > 9999 {
		return nil, domain.NewValidationError("year", "must be between 1 and 9999")
	}

	switch timeframe {
	case TimeframeMonth:
		if month < time.January || month > time.December {
			return nil, domain.NewValidationError("month", "must be between 1 and 12")
		}
		return s.monthSeries(ctx, userID, domain.MonthKey{Year: year, Month: month})
	case TimeframeYear:
		return s.yearSeries(ctx, userID, year)
	default:
		return nil, domain.NewValidationError("timeframe", "must be month or year")
	}
}

func (s *StatsService) monthSeries(ctx context.Context, userID string, key domain.MonthKey) ([]HistoryPoint, error) {
	rows, err := s.HistoryRepo.ListDays(ctx, userID, key)
	if err != nil {
		return nil, domain.NewStorageError("month history", err)
	}

	points := emptySeries(key.DaysIn())
	for _, row := range rows {
		if row.Day < 1 || row.Day > len(points) {
			continue
		}
		points[row.Day-1].Income = row.Income
		points[row.Day-1].Expense = row.Expense
	}

	return points, nil
}

func (s *StatsService) yearSeries(ctx context.Context, userID string, year int) ([]HistoryPoint, error) {
	rows, err := s.HistoryRepo.ListMonths(ctx, userID, year)
	if err != nil {
		return nil, domain.NewStorageError("year history", err)
	}

	points := emptySeries(12)
	for _, row := range rows {
		i := int(row.Month) - 1
		if i < 0 || i >= len(points) {
			continue
		}
		points[i].Income = row.Income
		points[i].Expense = row.Expense
	}

	return points, nil
}

func emptySeries(n int) []HistoryPoint {
	points := make([]HistoryPoint, n)
	for i := range points {
		points[i] = HistoryPoint{Label: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}
	return points
}

// normalizeRange maps both bounds onto UTC calendar dates and enforces
// from <= to and the configured maximum span
func (s *StatsService) normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, domain.NewValidationError("range", "from and to are required")
	}

	from = domain.NormalizeDate(from)
	to = domain.NormalizeDate(to)

	if from.After(to) {
		return time.Time{}, time.Time{}, domain.NewValidationError("range",
			fmt.Sprintf("from %s is after to %s", from.Format(domain.DateLayout), to.Format(domain.DateLayout)))
	}

	if s.MaxRangeDays > 0 {
		days := int(to.Sub(from).Hours()/24) + 1
		if days > s.MaxRangeDays {
			return time.Time{}, time.Time{}, domain.NewValidationError("range",
				fmt.Sprintf("spans %d days, at most %d allowed", days, s.MaxRangeDays))
		}
	}

	return from, to, nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthHistory is the per-day rollup of one user's ledger.
// It belongs to the month tier; the key still resolves to a single day.
type MonthHistory struct {
	UserID  string
	Year    int
	Month   time.Month
	Day     int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// YearHistory is the per-month rollup of one user's ledger
type YearHistory struct {
	UserID  string
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// RollupTier selects which rollup table a delta applies to
type RollupTier string

const (
	RollupTierMonth RollupTier = "month" // month_history, keyed by day
	RollupTierYear  RollupTier = "year"  // year_history, keyed by month
)

// RollupDelta is a signed change to one field of one rollup row.
// A positive Amount is an upsert-increment, a negative one a guarded decrement.
// Day is zero for the year tier.
type RollupDelta struct {
	Tier   RollupTier
	Year   int
	Month  time.Month
	Day    int
	Type   TransactionType
	Amount decimal.Decimal
}

// MonthDelta builds a month-tier delta for a day
func MonthDelta(key DayKey, t TransactionType, amount decimal.Decimal) RollupDelta {
	return RollupDelta{
		Tier:   RollupTierMonth,
		Year:   key.Year,
		Month:  key.Month,
		Day:    key.Day,
		Type:   t,
		Amount: amount,
	}
}

// YearDelta builds a year-tier delta for a month
func YearDelta(key MonthKey, t TransactionType, amount decimal.Decimal) RollupDelta {
	return RollupDelta{
		Tier:   RollupTierYear,
		Year:   key.Year,
		Month:  key.Month,
		Type:   t,
		Amount: amount,
	}
}

// SameRow reports whether two deltas address the same rollup field
func (d RollupDelta) SameRow(other RollupDelta) bool {
	return d.Tier == other.Tier &&
		d.Year == other.Year &&
		d.Month == other.Month &&
		d.Day == other.Day &&
		d.Type == other.Type
}

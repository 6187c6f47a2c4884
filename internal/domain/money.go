package domain

import (
	"github.com/shopspring/decimal"
)

// amountScale is the number of fractional digits an amount may carry.
// Persisted amounts are integers in 10^-amountScale units.
const amountScale = 2

// MaxAmount is the largest amount a single transaction may carry. It keeps
// every amount, and the sum of many of them in one rollup row, well inside
// int64 minor units.
var MaxAmount = decimal.New(1_000_000_000, 0)

// ValidateAmount checks that an amount is positive, at most MaxAmount and has
// no more than two fractional digits
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("amount", "must be positive")
	}

	if amount.GreaterThan(MaxAmount) {
		return NewValidationError("amount", "must not exceed "+MaxAmount.StringFixed(amountScale))
	}

	if !amount.Equal(amount.Truncate(amountScale)) {
		return NewValidationError("amount", "must be a multiple of 0.01")
	}

	return nil
}

// ToMinorUnits converts an amount into integer minor units (cents).
// The amount must have passed ValidateAmount.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(amountScale).IntPart()
}

// FromMinorUnits converts integer minor units (cents) back into an amount
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -amountScale)
}

// Balance is an income/expense pair for a period
type Balance struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense
func (b Balance) Net() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

// Add returns the field-wise sum of two balances
func (b Balance) Add(other Balance) Balance {
	return Balance{
		Income:  b.Income.Add(other.Income),
		Expense: b.Expense.Add(other.Expense),
	}
}

// Equal reports whether both fields match numerically
func (b Balance) Equal(other Balance) bool {
	return b.Income.Equal(other.Income) && b.Expense.Equal(other.Expense)
}

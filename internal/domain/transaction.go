package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of a ledger transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ParseTransactionType converts a raw string into a TransactionType.
// An empty string is rejected; use it only where a type is mandatory.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", NewValidationError("type", "must be income or expense")
	}
	return t, nil
}

// Transaction represents a single ledger record owned by one user.
// Type is fixed at creation; Amount and Date may change through an edit.
type Transaction struct {
	ID          uuid.UUID
	UserID      string
	Amount      decimal.Decimal // Always positive, at most two fractional digits
	Type        TransactionType
	Date        time.Time // UTC calendar date (midnight)
	Category    string    // Category name, unique per (user, type)
	Description string    // Description name, unique per (user, type)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns a *ValidationError if validation fails
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return NewValidationError("user_id", "is required")
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if !t.Type.Valid() {
		return NewValidationError("type", "must be income or expense")
	}

	if t.Date.IsZero() {
		return NewValidationError("date", "is required")
	}

	if t.Category == "" {
		return NewValidationError("category", "is required")
	}

	if t.Description == "" {
		return NewValidationError("description", "is required")
	}

	return nil
}

// DayKey returns the rollup key of the day this transaction is booked on
func (t *Transaction) DayKey() DayKey {
	return DayKeyOf(t.Date)
}

// MonthKey returns the rollup key of the month this transaction is booked in
func (t *Transaction) MonthKey() MonthKey {
	return MonthKeyOf(t.Date)
}

// CategoryStat is the sum of ledger amounts for one category in a period
type CategoryStat struct {
	Type     TransactionType
	Category string
	Amount   decimal.Decimal
}

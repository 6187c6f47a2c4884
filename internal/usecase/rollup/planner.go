package rollup

import (
	"fmt"
	"strings"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// EditMode selects how an edit is reflected in the rollups
type EditMode string

const (
	// EditModeCorrected removes the old amount at the old date and adds the new
	// amount at the new date
	EditModeCorrected EditMode = "corrected"

	// EditModeLegacy only removes the old amount at the old date. Kept for
	// compatibility with ledgers written by the first version of the app.
	// The rollups then hold less than the edited row, so any later edit or
	// delete of that row fails with domain.ErrRollupDiverged.
	EditModeLegacy EditMode = "legacy"
)

// ParseEditMode converts a configuration value into an EditMode.
// An empty value selects EditModeCorrected.
func ParseEditMode(s string) (EditMode, error) {
	switch EditMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", EditModeCorrected:
		return EditModeCorrected, nil
	case EditModeLegacy:
		return EditModeLegacy, nil
	default:
		return "", fmt.Errorf("unknown edit mode %q: must be corrected or legacy", s)
	}
}

// PlanCreate returns the deltas that book a new transaction:
// +amount on its day (month tier) and on its month (year tier)
func PlanCreate(tx *domain.Transaction) []domain.RollupDelta {
	return []domain.RollupDelta{
		domain.MonthDelta(tx.DayKey(), tx.Type, tx.Amount),
		domain.YearDelta(tx.MonthKey(), tx.Type, tx.Amount),
	}
}

// PlanDelete returns the deltas that remove a transaction from the rollups
func PlanDelete(tx *domain.Transaction) []domain.RollupDelta {
	return []domain.RollupDelta{
		domain.MonthDelta(tx.DayKey(), tx.Type, tx.Amount.Neg()),
		domain.YearDelta(tx.MonthKey(), tx.Type, tx.Amount.Neg()),
	}
}

// PlanEdit returns the deltas for changing old into updated.
// Logic:
//  1. Decrement the old amount at the old day and month
//  2. In corrected mode, increment the new amount at the new day and month
//  3. Merge deltas that hit the same row and drop the ones that cancel out
//
// Decrements are ordered before increments. Type never changes on edit, so
// updated.Type is ignored in favour of old.Type.
func PlanEdit(old, updated *domain.Transaction, mode EditMode) []domain.RollupDelta {
	deltas := PlanDelete(old)

	if mode == EditModeCorrected {
		deltas = append(deltas,
			domain.MonthDelta(updated.DayKey(), old.Type, updated.Amount),
			domain.YearDelta(updated.MonthKey(), old.Type, updated.Amount),
		)
	}

	return merge(deltas)
}

// merge folds deltas addressing the same row into one, keeping the position of
// the first occurrence, then moves decrements ahead of increments
func merge(deltas []domain.RollupDelta) []domain.RollupDelta {
	merged := make([]domain.RollupDelta, 0, len(deltas))

	for _, d := range deltas {
		found := false
		for i := range merged {
			if merged[i].SameRow(d) {
				merged[i].Amount = merged[i].Amount.Add(d.Amount)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, d)
		}
	}

	decrements := make([]domain.RollupDelta, 0, len(merged))
	increments := make([]domain.RollupDelta, 0, len(merged))
	for _, d := range merged {
		switch {
		case d.Amount.IsNegative():
			decrements = append(decrements, d)
		case d.Amount.IsPositive():
			increments = append(increments, d)
		}
	}

	return append(decrements, increments...)
}

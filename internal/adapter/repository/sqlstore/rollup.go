package sqlstore

import (
	"fmt"
	"strings"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// rollupTarget describes one rollup table. Table and column names come from
// this fixed set only, never from input.
type rollupTarget struct {
	table string
	keys  []string
}

var (
	monthHistoryTarget = rollupTarget{table: "month_history", keys: []string{"user_id", "year", "month", "day"}}
	yearHistoryTarget  = rollupTarget{table: "year_history", keys: []string{"user_id", "year", "month"}}
)

func rollupTargetFor(d domain.RollupDelta) (rollupTarget, error) {
	if !d.Type.Valid() {
		return rollupTarget{}, fmt.Errorf("unknown transaction type %q", d.Type)
	}

	switch d.Tier {
	case domain.RollupTierMonth:
		return monthHistoryTarget, nil
	case domain.RollupTierYear:
		return yearHistoryTarget, nil
	default:
		return rollupTarget{}, fmt.Errorf("unknown rollup tier %q", d.Tier)
	}
}

func (r rollupTarget) keyArgs(userID string, d domain.RollupDelta) []any {
	args := []any{userID, d.Year, int(d.Month)}
	if r.table == monthHistoryTarget.table {
		args = append(args, d.Day)
	}
	return args
}

func (r rollupTarget) keyPredicate() string {
	parts := make([]string, len(r.keys))
	for i, k := range r.keys {
		parts[i] = k + " = ?"
	}
	return strings.Join(parts, " AND ")
}

// upsertQuery binds the key columns followed by income_cents, expense_cents
func (r rollupTarget) upsertQuery() string {
	keys := strings.Join(r.keys, ", ")
	placeholders := strings.Repeat("?, ", len(r.keys)+1) + "?"

	return fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, income_cents, expense_cents)
		VALUES (%[3]s)
		ON CONFLICT (%[2]s) DO UPDATE SET
			income_cents = %[1]s.income_cents + excluded.income_cents,
			expense_cents = %[1]s.expense_cents + excluded.expense_cents
	`, r.table, keys, placeholders)
}

// decrementQuery binds the amount, the key columns, then the amount again
func (r rollupTarget) decrementQuery(t domain.TransactionType) string {
	column := columnFor(t)

	return fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s - ?
		WHERE %[3]s AND %[2]s >= ?
	`, r.table, column, r.keyPredicate())
}

func columnFor(t domain.TransactionType) string {
	if t == domain.TransactionTypeIncome {
		return "income_cents"
	}
	return "expense_cents"
}

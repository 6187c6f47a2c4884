package sqlstore

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/ledger-backend/internal/domain"
)

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "postgres numbers placeholders in order",
			dialect: DialectPostgres,
			query:   "SELECT * FROM t WHERE a = ? AND b = ? AND c = ?",
			want:    "SELECT * FROM t WHERE a = $1 AND b = $2 AND c = $3",
		},
		{
			name:    "postgres without placeholders",
			dialect: DialectPostgres,
			query:   "SELECT 1",
			want:    "SELECT 1",
		},
		{
			name:    "sqlite keeps question marks",
			dialect: DialectSQLite,
			query:   "SELECT * FROM t WHERE a = ?",
			want:    "SELECT * FROM t WHERE a = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(tt.query))
		})
	}
}

func TestDialect_LockClause(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", DialectPostgres.lockClause())
	assert.Empty(t, DialectSQLite.lockClause())
}

func TestRollupTargetFor(t *testing.T) {
	day := domain.DayKey{Year: 2024, Month: time.March, Day: 15}

	target, err := rollupTargetFor(domain.MonthDelta(day, domain.TransactionTypeIncome, decimal.NewFromInt(1)))
	require.NoError(t, err)
	assert.Equal(t, "month_history", target.table)
	assert.Equal(t, []any{"u1", 2024, 3, 15}, target.keyArgs("u1", domain.MonthDelta(day, domain.TransactionTypeIncome, decimal.NewFromInt(1))))

	yearDelta := domain.YearDelta(day.MonthKey(), domain.TransactionTypeExpense, decimal.NewFromInt(1))
	target, err = rollupTargetFor(yearDelta)
	require.NoError(t, err)
	assert.Equal(t, "year_history", target.table)
	assert.Equal(t, []any{"u1", 2024, 3}, target.keyArgs("u1", yearDelta))

	_, err = rollupTargetFor(domain.RollupDelta{Tier: "week", Type: domain.TransactionTypeIncome})
	assert.Error(t, err)

	_, err = rollupTargetFor(domain.RollupDelta{Tier: domain.RollupTierMonth, Type: "transfer"})
	assert.Error(t, err)
}

func TestRollupTarget_Queries(t *testing.T) {
	upsert := yearHistoryTarget.upsertQuery()
	assert.Contains(t, upsert, "INSERT INTO year_history (user_id, year, month, income_cents, expense_cents)")
	assert.Contains(t, upsert, "VALUES (?, ?, ?, ?, ?)")
	assert.Contains(t, upsert, "ON CONFLICT (user_id, year, month)")

	decrement := monthHistoryTarget.decrementQuery(domain.TransactionTypeExpense)
	assert.Contains(t, decrement, "SET expense_cents = expense_cents - ?")
	assert.Contains(t, decrement, "user_id = ? AND year = ? AND month = ? AND day = ?")
	assert.Contains(t, decrement, "expense_cents >= ?")
	assert.Equal(t, 6, strings.Count(decrement, "?"))
}

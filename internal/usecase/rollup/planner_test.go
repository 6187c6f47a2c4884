package rollup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(amount int64, t domain.TransactionType, year int, month time.Month, day int) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(amount),
		Type:        t,
		Date:        time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Category:    "Groceries",
		Description: "Weekly shop",
	}
}

// assertDeltas compares deltas numerically (decimal values are not DeepEqual-safe)
func assertDeltas(t *testing.T, want, got []domain.RollupDelta) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].SameRow(got[i]), "delta %d row: want %+v, got %+v", i, want[i], got[i])
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "delta %d amount: want %s, got %s", i, want[i].Amount, got[i].Amount)
	}
}

func TestPlanCreate(t *testing.T) {
	tx := newTx(100, domain.TransactionTypeIncome, 2024, time.March, 15)

	deltas := PlanCreate(tx)

	assertDeltas(t, []domain.RollupDelta{
		{Tier: domain.RollupTierMonth, Year: 2024, Month: time.March, Day: 15, Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(100)},
		{Tier: domain.RollupTierYear, Year: 2024, Month: time.March, Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(100)},
	}, deltas)
}

func TestPlanDelete(t *testing.T) {
	tx := newTx(200, domain.TransactionTypeExpense, 2024, time.January, 10)

	deltas := PlanDelete(tx)

	assertDeltas(t, []domain.RollupDelta{
		{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 10, Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(-200)},
		{Tier: domain.RollupTierYear, Year: 2024, Month: time.January, Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(-200)},
	}, deltas)
}

func TestPlanEdit(t *testing.T) {
	expense := domain.TransactionTypeExpense

	tests := []struct {
		name    string
		old     *domain.Transaction
		updated *domain.Transaction
		mode    EditMode
		want    []domain.RollupDelta
	}{
		{
			name:    "Corrected: amount change on the same day nets to a single decrement per tier",
			old:     newTx(200, expense, 2024, time.January, 10),
			updated: newTx(150, expense, 2024, time.January, 10),
			mode:    EditModeCorrected,
			want: []domain.RollupDelta{
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 10, Type: expense, Amount: decimal.NewFromInt(-50)},
				{Tier: domain.RollupTierYear, Year: 2024, Month: time.January, Type: expense, Amount: decimal.NewFromInt(-50)},
			},
		},
		{
			name:    "Corrected: amount increase on the same day nets to increments",
			old:     newTx(100, expense, 2024, time.January, 10),
			updated: newTx(130, expense, 2024, time.January, 10),
			mode:    EditModeCorrected,
			want: []domain.RollupDelta{
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 10, Type: expense, Amount: decimal.NewFromInt(30)},
				{Tier: domain.RollupTierYear, Year: 2024, Month: time.January, Type: expense, Amount: decimal.NewFromInt(30)},
			},
		},
		{
			name:    "Corrected: unchanged transaction produces no deltas",
			old:     newTx(100, expense, 2024, time.January, 10),
			updated: newTx(100, expense, 2024, time.January, 10),
			mode:    EditModeCorrected,
			want:    []domain.RollupDelta{},
		},
		{
			name:    "Corrected: move to another day in the same month",
			old:     newTx(100, expense, 2024, time.January, 10),
			updated: newTx(100, expense, 2024, time.January, 20),
			mode:    EditModeCorrected,
			want: []domain.RollupDelta{
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 10, Type: expense, Amount: decimal.NewFromInt(-100)},
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 20, Type: expense, Amount: decimal.NewFromInt(100)},
			},
		},
		{
			name:    "Corrected: move to another month with a new amount",
			old:     newTx(100, expense, 2024, time.January, 31),
			updated: newTx(80, expense, 2024, time.February, 1),
			mode:    EditModeCorrected,
			want: []domain.RollupDelta{
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 31, Type: expense, Amount: decimal.NewFromInt(-100)},
				{Tier: domain.RollupTierYear, Year: 2024, Month: time.January, Type: expense, Amount: decimal.NewFromInt(-100)},
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.February, Day: 1, Type: expense, Amount: decimal.NewFromInt(80)},
				{Tier: domain.RollupTierYear, Year: 2024, Month: time.February, Type: expense, Amount: decimal.NewFromInt(80)},
			},
		},
		{
			name:    "Corrected: updated type is ignored",
			old:     newTx(100, expense, 2024, time.January, 10),
			updated: newTx(100, domain.TransactionTypeIncome, 2024, time.January, 10),
			mode:    EditModeCorrected,
			want:    []domain.RollupDelta{},
		},
		{
			name:    "Legacy: only the old date is decremented",
			old:     newTx(200, expense, 2024, time.January, 10),
			updated: newTx(150, expense, 2024, time.February, 3),
			mode:    EditModeLegacy,
			want: []domain.RollupDelta{
				{Tier: domain.RollupTierMonth, Year: 2024, Month: time.January, Day: 10, Type: expense, Amount: decimal.NewFromInt(-200)},
				{Tier: domain.RollupTierYear, Year: 2024, Month: time.January, Type: expense, Amount: decimal.NewFromInt(-200)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanEdit(tt.old, tt.updated, tt.mode)
			assertDeltas(t, tt.want, got)
		})
	}
}

func TestPlanEdit_PreservesTotals(t *testing.T) {
	// Applying the corrected plan must move the total by exactly new - old
	old := newTx(250, domain.TransactionTypeIncome, 2023, time.December, 31)
	updated := newTx(75, domain.TransactionTypeIncome, 2024, time.January, 1)

	monthTotal := decimal.Zero
	yearTotal := decimal.Zero
	for _, d := range PlanEdit(old, updated, EditModeCorrected) {
		if d.Tier == domain.RollupTierMonth {
			monthTotal = monthTotal.Add(d.Amount)
		} else {
			yearTotal = yearTotal.Add(d.Amount)
		}
	}

	assert.True(t, monthTotal.Equal(decimal.NewFromInt(-175)))
	assert.True(t, yearTotal.Equal(decimal.NewFromInt(-175)))
}

func TestParseEditMode(t *testing.T) {
	tests := []struct {
		input   string
		want    EditMode
		wantErr bool
	}{
		{"", EditModeCorrected, false},
		{"corrected", EditModeCorrected, false},
		{" Legacy ", EditModeLegacy, false},
		{"both", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEditMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

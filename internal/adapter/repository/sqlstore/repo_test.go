package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/ledger-backend/internal/domain"
)

func newTransaction(userID, amount string, t domain.TransactionType, date string, category string, created time.Time) *domain.Transaction {
	d, _ := domain.ParseDate(date)
	return &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Type:        t,
		Date:        d,
		Category:    category,
		Description: "note",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func insertAll(t *testing.T, uow domain.UnitOfWork, txs ...*domain.Transaction) {
	t.Helper()
	err := uow.WithinTx(context.Background(), func(ltx domain.LedgerTx) error {
		for _, tx := range txs {
			if err := ltx.InsertTransaction(context.Background(), tx); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionRepository_ListInRange(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	uow := sqlstore.NewUnitOfWork(db, sql.LevelDefault)
	repo := sqlstore.NewTransactionRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	early := newTransaction("u1", "10.00", domain.TransactionTypeExpense, "2024-03-10", "Food", base)
	sameDayOld := newTransaction("u1", "20.00", domain.TransactionTypeExpense, "2024-03-12", "Food", base)
	sameDayNew := newTransaction("u1", "30.50", domain.TransactionTypeIncome, "2024-03-12", "Salary", base.Add(time.Minute))
	outside := newTransaction("u1", "5.00", domain.TransactionTypeExpense, "2024-04-01", "Food", base)
	foreign := newTransaction("u2", "7.00", domain.TransactionTypeExpense, "2024-03-11", "Food", base)
	insertAll(t, uow, early, sameDayOld, sameDayNew, outside, foreign)

	from, _ := domain.ParseDate("2024-03-10")
	to, _ := domain.ParseDate("2024-03-31")
	got, err := repo.ListInRange(ctx, "u1", from, to)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, sameDayNew.ID, got[0].ID)
	assert.Equal(t, sameDayOld.ID, got[1].ID)
	assert.Equal(t, early.ID, got[2].ID)

	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("30.50")))
	assert.Equal(t, "2024-03-12", got[0].Date.Format(domain.DateLayout))
	assert.True(t, got[0].CreatedAt.Equal(sameDayNew.CreatedAt))
}

func TestTransactionRepository_CategoryTotalsAndSnapshot(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	uow := sqlstore.NewUnitOfWork(db, sql.LevelDefault)
	repo := sqlstore.NewTransactionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	insertAll(t, uow,
		newTransaction("u1", "10.00", domain.TransactionTypeExpense, "2024-03-10", "Food", now),
		newTransaction("u1", "15.25", domain.TransactionTypeExpense, "2024-03-11", "Food", now),
		newTransaction("u1", "100.00", domain.TransactionTypeIncome, "2024-03-11", "Salary", now),
		newTransaction("u1", "25.25", domain.TransactionTypeExpense, "2024-03-12", "Bills", now),
	)

	from, _ := domain.ParseDate("2024-03-01")
	to, _ := domain.ParseDate("2024-03-31")
	stats, err := repo.CategoryTotals(ctx, "u1", from, to)
	require.NoError(t, err)

	require.Len(t, stats, 3)
	assert.Equal(t, "Salary", stats[0].Category)
	// Equal totals fall back to category name order
	assert.Equal(t, "Bills", stats[1].Category)
	assert.Equal(t, "Food", stats[2].Category)
	assert.True(t, stats[2].Amount.Equal(decimal.RequireFromString("25.25")))

	snapshot, err := sqlstore.NewAuditRepository(db).SnapshotTotals(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, snapshot.Ledger.Income.Equal(decimal.NewFromInt(100)))
	assert.True(t, snapshot.Ledger.Expense.Equal(decimal.RequireFromString("50.50")))
	// rows inserted straight into the ledger have no rollups
	assert.True(t, snapshot.Month.Income.IsZero())
	assert.True(t, snapshot.Year.Expense.IsZero())
}

func TestHistoryRepository_Rollups(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	uow := sqlstore.NewUnitOfWork(db, sql.LevelDefault)
	repo := sqlstore.NewHistoryRepository(db)
	ctx := context.Background()

	apply := func(deltas ...domain.RollupDelta) error {
		return uow.WithinTx(ctx, func(ltx domain.LedgerTx) error {
			for _, d := range deltas {
				if err := ltx.ApplyRollupDelta(ctx, "u1", d); err != nil {
					return err
				}
			}
			return nil
		})
	}

	feb28 := domain.DayKey{Year: 2024, Month: time.February, Day: 28}
	mar01 := domain.DayKey{Year: 2024, Month: time.March, Day: 1}
	mar15 := domain.DayKey{Year: 2024, Month: time.March, Day: 15}
	dec31 := domain.DayKey{Year: 2023, Month: time.December, Day: 31}

	require.NoError(t, apply(
		domain.MonthDelta(feb28, domain.TransactionTypeIncome, decimal.NewFromInt(10)),
		domain.MonthDelta(mar01, domain.TransactionTypeExpense, decimal.NewFromInt(4)),
		domain.MonthDelta(mar15, domain.TransactionTypeIncome, decimal.NewFromInt(7)),
		domain.MonthDelta(mar15, domain.TransactionTypeIncome, decimal.NewFromInt(3)),
		domain.YearDelta(mar15.MonthKey(), domain.TransactionTypeIncome, decimal.NewFromInt(10)),
		domain.YearDelta(dec31.MonthKey(), domain.TransactionTypeExpense, decimal.NewFromInt(1)),
	))

	t.Run("SumDays honours both range ends across months", func(t *testing.T) {
		balance, err := repo.SumDays(ctx, "u1", feb28, mar01)
		require.NoError(t, err)
		assert.True(t, balance.Income.Equal(decimal.NewFromInt(10)))
		assert.True(t, balance.Expense.Equal(decimal.NewFromInt(4)))

		balance, err = repo.SumDays(ctx, "u1", mar01, mar15)
		require.NoError(t, err)
		assert.True(t, balance.Income.Equal(decimal.NewFromInt(10)))
	})

	t.Run("ListDays", func(t *testing.T) {
		days, err := repo.ListDays(ctx, "u1", mar15.MonthKey())
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, 1, days[0].Day)
		assert.Equal(t, 15, days[1].Day)
		assert.True(t, days[1].Income.Equal(decimal.NewFromInt(10)))
	})

	t.Run("DistinctYears", func(t *testing.T) {
		years, err := repo.DistinctYears(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int{2023, 2024}, years)
	})

	t.Run("decrement below zero diverges", func(t *testing.T) {
		err := apply(domain.MonthDelta(mar01, domain.TransactionTypeExpense, decimal.NewFromInt(-5)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrRollupDiverged))

		var storageErr *domain.StorageError
		assert.True(t, errors.As(err, &storageErr))
	})

	t.Run("decrement to zero keeps the row", func(t *testing.T) {
		require.NoError(t, apply(domain.MonthDelta(mar01, domain.TransactionTypeExpense, decimal.NewFromInt(-4))))

		days, err := repo.ListDays(ctx, "u1", mar01.MonthKey())
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.True(t, days[0].Expense.IsZero())
	})

	t.Run("ListUserIDs", func(t *testing.T) {
		insertAll(t, uow, newTransaction("u0", "1.00", domain.TransactionTypeIncome, "2024-01-01", "Salary", time.Now()))

		ids, err := sqlstore.NewAuditRepository(db).ListUserIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"u0", "u1"}, ids)
	})
}

func TestDirectoryRepository(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	repo := sqlstore.NewDirectoryRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.CreateCategory(ctx, &domain.Category{UserID: "u1", Name: "Rent", Type: domain.TransactionTypeExpense, CreatedAt: now}))
	require.NoError(t, repo.CreateCategory(ctx, &domain.Category{UserID: "u1", Name: "Bonus", Type: domain.TransactionTypeIncome, CreatedAt: now}))
	// Same name under the other type is a different entry
	require.NoError(t, repo.CreateCategory(ctx, &domain.Category{UserID: "u1", Name: "Rent", Type: domain.TransactionTypeIncome, CreatedAt: now}))

	err := repo.CreateCategory(ctx, &domain.Category{UserID: "u1", Name: "Rent", Type: domain.TransactionTypeExpense, CreatedAt: now})
	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr), "duplicate should be a validation error, got %v", err)

	all, err := repo.ListCategories(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Bonus", all[0].Name)

	income, err := repo.ListCategories(ctx, "u1", domain.TransactionTypeIncome)
	require.NoError(t, err)
	require.Len(t, income, 2)
	assert.Equal(t, []string{"Bonus", "Rent"}, []string{income[0].Name, income[1].Name})

	require.NoError(t, repo.CreateDescription(ctx, &domain.Description{UserID: "u1", Name: "Landlord", Type: domain.TransactionTypeExpense, CreatedAt: now}))
	err = repo.CreateDescription(ctx, &domain.Description{UserID: "u1", Name: "Landlord", Type: domain.TransactionTypeExpense, CreatedAt: now})
	require.True(t, errors.As(err, &validationErr))

	descriptions, err := repo.ListDescriptions(ctx, "u2", "")
	require.NoError(t, err)
	assert.Empty(t, descriptions)
}

package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/directory"
)

func TestSeed_CreatesStarterSet(t *testing.T) {
	ctx := context.Background()
	service := directory.NewDirectoryService(sqlstore.NewDirectoryRepository(sqlite.OpenTestDB(t)))
	seeder := NewDirectorySeeder(service)

	require.NoError(t, seeder.Seed(ctx, "user-1"))

	categories, err := service.ListCategories(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, categories, len(StarterCategories))

	descriptions, err := service.ListDescriptions(ctx, "user-1", domain.TransactionTypeExpense)
	require.NoError(t, err)
	assert.Len(t, descriptions, 2)
}

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	service := directory.NewDirectoryService(sqlstore.NewDirectoryRepository(sqlite.OpenTestDB(t)))
	seeder := NewDirectorySeeder(service)

	// a user who already created one of the starters keeps it
	_, err := service.CreateCategory(ctx, "user-1", "Housing", "custom", domain.TransactionTypeExpense)
	require.NoError(t, err)

	require.NoError(t, seeder.Seed(ctx, "user-1"))
	require.NoError(t, seeder.Seed(ctx, "user-1"))

	categories, err := service.ListCategories(ctx, "user-1", domain.TransactionTypeExpense)
	require.NoError(t, err)
	assert.Len(t, categories, 3)

	for _, c := range categories {
		if c.Name == "Housing" {
			assert.Equal(t, "custom", c.Icon)
		}
	}
}

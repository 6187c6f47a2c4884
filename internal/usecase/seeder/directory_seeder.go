package seeder

import (
	"context"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/directory"
)

// StarterCategory defines a category every seeded user starts with
type StarterCategory struct {
	Name string
	Icon string
	Type domain.TransactionType
}

// StarterCategories are created for every seeded user
var StarterCategories = []StarterCategory{
	{Name: "Salary", Icon: "💼", Type: domain.TransactionTypeIncome},
	{Name: "Other income", Icon: "💰", Type: domain.TransactionTypeIncome},
	{Name: "Groceries", Icon: "🛒", Type: domain.TransactionTypeExpense},
	{Name: "Housing", Icon: "🏠", Type: domain.TransactionTypeExpense},
	{Name: "Transport", Icon: "🚌", Type: domain.TransactionTypeExpense},
}

// StarterDescriptions are created for every seeded user
var StarterDescriptions = []struct {
	Name string
	Type domain.TransactionType
}{
	{Name: "Monthly salary", Type: domain.TransactionTypeIncome},
	{Name: "Supermarket", Type: domain.TransactionTypeExpense},
	{Name: "Rent", Type: domain.TransactionTypeExpense},
}

// DirectorySeeder gives users a starter set of categories and descriptions
type DirectorySeeder struct {
	service *directory.DirectoryService
}

// NewDirectorySeeder creates a new DirectorySeeder instance
func NewDirectorySeeder(service *directory.DirectoryService) *DirectorySeeder {
	return &DirectorySeeder{
		service: service,
	}
}

// Seed ensures the starter categories and descriptions exist for userID.
// Entries that already exist are left untouched, so Seed can run on every start.
func (s *DirectorySeeder) Seed(ctx context.Context, userID string) error {
	categories, err := s.service.ListCategories(ctx, userID, "")
	if err != nil {
		return err
	}

	for _, starter := range StarterCategories {
		if containsCategory(categories, starter.Name, starter.Type) {
			continue
		}
		if _, err := s.service.CreateCategory(ctx, userID, starter.Name, starter.Icon, starter.Type); err != nil {
			return err
		}
	}

	descriptions, err := s.service.ListDescriptions(ctx, userID, "")
	if err != nil {
		return err
	}

	for _, starter := range StarterDescriptions {
		if containsDescription(descriptions, starter.Name, starter.Type) {
			continue
		}
		if _, err := s.service.CreateDescription(ctx, userID, starter.Name, starter.Type); err != nil {
			return err
		}
	}

	return nil
}

func containsCategory(categories []*domain.Category, name string, t domain.TransactionType) bool {
	for _, c := range categories {
		if c.Name == name && c.Type == t {
			return true
		}
	}
	return false
}

func containsDescription(descriptions []*domain.Description, name string, t domain.TransactionType) bool {
	for _, d := range descriptions {
		if d.Name == name && d.Type == t {
			return true
		}
	}
	return false
}

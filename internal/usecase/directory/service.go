package directory

import (
	"context"
	"strings"
	"time"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// DirectoryService manages the categories and descriptions a transaction can reference
type DirectoryService struct {
	Repo domain.DirectoryRepository
	Now  func() time.Time
}

// NewDirectoryService creates a new DirectoryService instance
func NewDirectoryService(repo domain.DirectoryRepository) *DirectoryService {
	return &DirectoryService{Repo: repo, Now: time.Now}
}

// CreateCategory validates and stores a new category
func (s *DirectoryService) CreateCategory(ctx context.Context, userID, name, icon string, t domain.TransactionType) (*domain.Category, error) {
	category := &domain.Category{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Icon:      strings.TrimSpace(icon),
		Type:      t,
		CreatedAt: s.Now().UTC(),
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		return nil, domain.NewStorageError("create category", err)
	}

	return category, nil
}

// ListCategories lists a user's categories; an empty type lists both kinds
func (s *DirectoryService) ListCategories(ctx context.Context, userID string, t domain.TransactionType) ([]*domain.Category, error) {
	if t != "" && !t.Valid() {
		return nil, domain.NewValidationError("type", "must be income or expense")
	}

	categories, err := s.Repo.ListCategories(ctx, userID, t)
	if err != nil {
		return nil, domain.NewStorageError("list categories", err)
	}
	return categories, nil
}

// CreateDescription validates and stores a new description
func (s *DirectoryService) CreateDescription(ctx context.Context, userID, name string, t domain.TransactionType) (*domain.Description, error) {
	description := &domain.Description{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Type:      t,
		CreatedAt: s.Now().UTC(),
	}

	if err := description.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateDescription(ctx, description); err != nil {
		return nil, domain.NewStorageError("create description", err)
	}

	return description, nil
}

// ListDescriptions lists a user's descriptions; an empty type lists both kinds
func (s *DirectoryService) ListDescriptions(ctx context.Context, userID string, t domain.TransactionType) ([]*domain.Description, error) {
	if t != "" && !t.Valid() {
		return nil, domain.NewValidationError("type", "must be income or expense")
	}

	descriptions, err := s.Repo.ListDescriptions(ctx, userID, t)
	if err != nil {
		return nil, domain.NewStorageError("list descriptions", err)
	}
	return descriptions, nil
}

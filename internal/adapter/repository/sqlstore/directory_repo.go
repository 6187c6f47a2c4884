package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// directoryRepository implements domain.DirectoryRepository
type directoryRepository struct {
	db *DB
}

// NewDirectoryRepository creates a new category/description repository
func NewDirectoryRepository(db *DB) domain.DirectoryRepository {
	return &directoryRepository{db: db}
}

// CreateCategory creates a new category
func (r *directoryRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (user_id, name, icon, type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		c.UserID,
		c.Name,
		c.Icon,
		string(c.Type),
		formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewValidationError("name", fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// ListCategories lists a user's categories, optionally filtered by type
func (r *directoryRepository) ListCategories(ctx context.Context, userID string, t domain.TransactionType) ([]*domain.Category, error) {
	query := `SELECT user_id, name, icon, type, created_at FROM categories WHERE user_id = ?`
	args := []any{userID}
	if t != "" {
		query += ` AND type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		var txType, createdAt string

		if err := rows.Scan(&c.UserID, &c.Name, &c.Icon, &txType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		c.Type = domain.TransactionType(txType)
		if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// CreateDescription creates a new description
func (r *directoryRepository) CreateDescription(ctx context.Context, d *domain.Description) error {
	query := `
		INSERT INTO descriptions (user_id, name, type, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		d.UserID,
		d.Name,
		string(d.Type),
		formatTimestamp(d.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewValidationError("name", fmt.Sprintf("description %q already exists", d.Name))
		}
		return fmt.Errorf("failed to create description: %w", err)
	}

	return nil
}

// ListDescriptions lists a user's descriptions, optionally filtered by type
func (r *directoryRepository) ListDescriptions(ctx context.Context, userID string, t domain.TransactionType) ([]*domain.Description, error) {
	query := `SELECT user_id, name, type, created_at FROM descriptions WHERE user_id = ?`
	args := []any{userID}
	if t != "" {
		query += ` AND type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := make([]*domain.Description, 0)
	for rows.Next() {
		var d domain.Description
		var txType, createdAt string

		if err := rows.Scan(&d.UserID, &d.Name, &txType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}

		d.Type = domain.TransactionType(txType)
		if d.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		descriptions = append(descriptions, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating descriptions: %w", err)
	}

	return descriptions, nil
}

// isUniqueViolation recognises duplicate-key errors from both drivers
// (pq: "duplicate key value violates unique constraint",
// sqlite: "UNIQUE constraint failed")
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

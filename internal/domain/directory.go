package domain

import (
	"time"
	"unicode/utf8"
)

const (
	minDirectoryNameLen = 3
	maxDirectoryNameLen = 40
)

// Category is a user-defined label for transactions of one type
type Category struct {
	UserID    string
	Name      string
	Icon      string
	Type      TransactionType
	CreatedAt time.Time
}

// Validate ensures the category adheres to domain rules
func (c *Category) Validate() error {
	if c.UserID == "" {
		return NewValidationError("user_id", "is required")
	}
	if err := validateDirectoryName(c.Name); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return NewValidationError("type", "must be income or expense")
	}
	return nil
}

// Description is a reusable free-text label for transactions of one type
type Description struct {
	UserID    string
	Name      string
	Type      TransactionType
	CreatedAt time.Time
}

// Validate ensures the description adheres to domain rules
func (d *Description) Validate() error {
	if d.UserID == "" {
		return NewValidationError("user_id", "is required")
	}
	if err := validateDirectoryName(d.Name); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return NewValidationError("type", "must be income or expense")
	}
	return nil
}

func validateDirectoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minDirectoryNameLen || n > maxDirectoryNameLen {
		return NewValidationError("name", "must be between 3 and 40 characters")
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

// ErrRollupDiverged is returned when a decrement finds no rollup row able to
// absorb it, meaning the rollups no longer match the ledger
var ErrRollupDiverged = errors.New("rollup row missing or smaller than decrement")

// ValidationError reports malformed input. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing resource, or one not owned by the caller
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// StorageError reports that the atomic unit could not be committed.
// The unit has been rolled back; the caller decides whether to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError, leaving nil and already
// classified errors untouched
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var storageErr *StorageError
	var notFoundErr *NotFoundError
	var validationErr *ValidationError
	if errors.As(err, &storageErr) || errors.As(err, &notFoundErr) || errors.As(err, &validationErr) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsStorage reports whether err is a StorageError
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/logger"
	"github.com/simaogato/ledger-backend/internal/usecase/rollup"
)

// CreateTransactionInput represents the input for recording a new transaction
type CreateTransactionInput struct {
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Date        time.Time
	Category    string
	Description string
}

// EditTransactionInput represents the input for changing an existing transaction.
// Only the amount and the date can change.
type EditTransactionInput struct {
	ID     uuid.UUID
	Amount decimal.Decimal
	Date   time.Time
}

// LedgerService records ledger mutations and keeps the rollups in step with them
type LedgerService struct {
	UnitOfWork domain.UnitOfWork
	EditMode   rollup.EditMode
	Log        *logger.Logger
	Now        func() time.Time
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(uow domain.UnitOfWork, mode rollup.EditMode, log *logger.Logger) *LedgerService {
	if log == nil {
		log = logger.NewNop()
	}

	return &LedgerService{
		UnitOfWork: uow,
		EditMode:   mode,
		Log:        log,
		Now:        time.Now,
	}
}

// RecordCreate books a new transaction together with its rollup increments
// Logic:
//  1. Build and validate the transaction (date normalized to a UTC calendar day)
//  2. Inside one unit: check that the category and description exist for the type
//  3. Insert the ledger row
//  4. Increment the day row of month_history and the month row of year_history
func (s *LedgerService) RecordCreate(ctx context.Context, userID string, input CreateTransactionInput) (*domain.Transaction, error) {
	now := s.Now().UTC()
	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		Date:        domain.NormalizeDate(input.Date),
		Category:    input.Category,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	err := s.UnitOfWork.WithinTx(ctx, func(ltx domain.LedgerTx) error {
		if err := s.checkReferences(ctx, ltx, tx); err != nil {
			return err
		}

		if err := ltx.InsertTransaction(ctx, tx); err != nil {
			return err
		}

		return applyDeltas(ctx, ltx, userID, rollup.PlanCreate(tx))
	})
	if err != nil {
		s.logFailure("create", userID, tx.ID, err)
		return nil, err
	}

	s.Log.Debug("transaction recorded",
		"user_id", userID,
		"transaction_id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2),
		"date", tx.Date.Format(domain.DateLayout))

	return tx, nil
}

// RecordEdit changes the amount and date of a transaction and moves its
// contribution in the rollups according to the configured edit mode
// Logic:
//  1. Validate the new amount and date
//  2. Inside one unit: read the current row, locking it where supported
//  3. Persist the new amount and date
//  4. Apply the planned deltas (decrements first)
func (s *LedgerService) RecordEdit(ctx context.Context, userID string, input EditTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, domain.NewValidationError("date", "is required")
	}

	var updated *domain.Transaction
	err := s.UnitOfWork.WithinTx(ctx, func(ltx domain.LedgerTx) error {
		old, err := ltx.GetTransaction(ctx, userID, input.ID, true)
		if err != nil {
			return err
		}

		next := *old
		next.Amount = input.Amount
		next.Date = domain.NormalizeDate(input.Date)
		next.UpdatedAt = s.Now().UTC()

		if err := ltx.UpdateTransaction(ctx, &next); err != nil {
			return err
		}

		if err := applyDeltas(ctx, ltx, userID, rollup.PlanEdit(old, &next, s.EditMode)); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		s.logFailure("edit", userID, input.ID, err)
		return nil, err
	}

	s.Log.Debug("transaction edited",
		"user_id", userID,
		"transaction_id", updated.ID,
		"amount", updated.Amount.StringFixed(2),
		"date", updated.Date.Format(domain.DateLayout),
		"edit_mode", s.EditMode)

	return updated, nil
}

// RecordDelete removes a transaction and its rollup contribution.
// A transaction that no longer exists yields a *domain.NotFoundError and the
// rollups are left untouched.
func (s *LedgerService) RecordDelete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.UnitOfWork.WithinTx(ctx, func(ltx domain.LedgerTx) error {
		tx, err := ltx.GetTransaction(ctx, userID, id, true)
		if err != nil {
			return err
		}

		if err := applyDeltas(ctx, ltx, userID, rollup.PlanDelete(tx)); err != nil {
			return err
		}

		return ltx.DeleteTransaction(ctx, userID, id)
	})
	if err != nil {
		s.logFailure("delete", userID, id, err)
		return err
	}

	s.Log.Debug("transaction deleted", "user_id", userID, "transaction_id", id)
	return nil
}

func (s *LedgerService) checkReferences(ctx context.Context, ltx domain.LedgerTx, tx *domain.Transaction) error {
	ok, err := ltx.CategoryExists(ctx, tx.UserID, tx.Category, tx.Type)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("category", tx.Category)
	}

	ok, err = ltx.DescriptionExists(ctx, tx.UserID, tx.Description, tx.Type)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("description", tx.Description)
	}

	return nil
}

func applyDeltas(ctx context.Context, ltx domain.LedgerTx, userID string, deltas []domain.RollupDelta) error {
	for _, delta := range deltas {
		if err := ltx.ApplyRollupDelta(ctx, userID, delta); err != nil {
			return err
		}
	}
	return nil
}

// logFailure logs storage failures loudly; caller mistakes stay at debug level
func (s *LedgerService) logFailure(op, userID string, id uuid.UUID, err error) {
	if domain.IsValidation(err) || domain.IsNotFound(err) {
		s.Log.Debug("ledger "+op+" rejected", "user_id", userID, "transaction_id", id, "error", err)
		return
	}
	s.Log.Error("ledger "+op+" failed", "user_id", userID, "transaction_id", id, "error", err)
}

package audit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/logger"
)

// maxParallelUsers bounds how many users CheckAll audits at once
const maxParallelUsers = 4

// Report compares one user's ledger totals with both rollup tiers
type Report struct {
	UserID     string
	Ledger     domain.Balance
	Month      domain.Balance
	Year       domain.Balance
	Consistent bool
}

// Auditor recomputes rollup totals from the ledger and reports drift
type Auditor struct {
	AuditRepo domain.AuditRepository
	Log       *logger.Logger
}

// NewAuditor creates a new Auditor instance
func NewAuditor(auditRepo domain.AuditRepository, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.NewNop()
	}

	return &Auditor{
		AuditRepo: auditRepo,
		Log:       log,
	}
}

// CheckUser compares Σ transactions with Σ month_history and Σ year_history
// for one user. All three sums come from one snapshot, so a unit committing
// meanwhile is either counted on every side or on none.
func (a *Auditor) CheckUser(ctx context.Context, userID string) (*Report, error) {
	totals, err := a.AuditRepo.SnapshotTotals(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("audit "+userID, err)
	}

	return &Report{
		UserID:     userID,
		Ledger:     totals.Ledger,
		Month:      totals.Month,
		Year:       totals.Year,
		Consistent: totals.Ledger.Equal(totals.Month) && totals.Ledger.Equal(totals.Year),
	}, nil
}

// CheckAll audits every known user and returns the inconsistent reports
func (a *Auditor) CheckAll(ctx context.Context) ([]*Report, error) {
	userIDs, err := a.AuditRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, domain.NewStorageError("audit list users", err)
	}

	reports := make([]*Report, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUsers)
	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			report, err := a.CheckUser(gctx, userID)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	drifted := make([]*Report, 0)
	for _, report := range reports {
		if report.Consistent {
			continue
		}
		drifted = append(drifted, report)
		a.Log.Warn("rollup drift detected",
			"user_id", report.UserID,
			"ledger_income", report.Ledger.Income.StringFixed(2),
			"ledger_expense", report.Ledger.Expense.StringFixed(2),
			"month_income", report.Month.Income.StringFixed(2),
			"month_expense", report.Month.Expense.StringFixed(2),
			"year_income", report.Year.Income.StringFixed(2),
			"year_expense", report.Year.Expense.StringFixed(2))
	}

	a.Log.Info("rollup audit finished", "users", len(userIDs), "drifted", len(drifted))
	return drifted, nil
}

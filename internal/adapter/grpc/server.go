package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
	"github.com/simaogato/ledger-backend/internal/usecase/stats"
)

// Server implements the LedgerService gRPC server
type Server struct {
	LedgerService *ledger.LedgerService
	StatsService  *stats.StatsService
}

var _ LedgerServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(ledgerService *ledger.LedgerService, statsService *stats.StatsService) *Server {
	return &Server{
		LedgerService: ledgerService,
		StatsService:  statsService,
	}
}

// CreateTransaction handles the CreateTransaction RPC.
// Request: amount, type, date, category, description.
func (s *Server) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, err
	}

	date, err := dateField(req, "date")
	if err != nil {
		return nil, err
	}

	txType, err := domain.ParseTransactionType(stringField(req, "type"))
	if err != nil {
		return nil, mapError(err)
	}

	tx, err := s.LedgerService.RecordCreate(ctx, userID, ledger.CreateTransactionInput{
		Amount:      amount,
		Type:        txType,
		Date:        date,
		Category:    stringField(req, "category"),
		Description: stringField(req, "description"),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"transaction": transactionToMap(tx)})
}

// EditTransaction handles the EditTransaction RPC.
// Request: id, amount, date.
func (s *Server) EditTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}

	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, err
	}

	date, err := dateField(req, "date")
	if err != nil {
		return nil, err
	}

	tx, err := s.LedgerService.RecordEdit(ctx, userID, ledger.EditTransactionInput{
		ID:     id,
		Amount: amount,
		Date:   date,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"transaction": transactionToMap(tx)})
}

// DeleteTransaction handles the DeleteTransaction RPC.
// Request: id.
func (s *Server) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}

	if err := s.LedgerService.RecordDelete(ctx, userID, id); err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"id": id.String()})
}

// ListTransactions handles the ListTransactions RPC.
// Request: from, to.
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, from, to, err := rangeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	transactions, err := s.StatsService.TransactionsInRange(ctx, userID, from, to)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, transactionToMap(tx))
	}

	return newStruct(map[string]interface{}{"transactions": items})
}

// GetBalance handles the GetBalance RPC.
// Request: from, to.
func (s *Server) GetBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, from, to, err := rangeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	balance, err := s.StatsService.BalanceInRange(ctx, userID, from, to)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"income":  balance.Income.StringFixed(2),
		"expense": balance.Expense.StringFixed(2),
		"net":     balance.Net().StringFixed(2),
	})
}

// GetCategoryBreakdown handles the GetCategoryBreakdown RPC.
// Request: from, to.
func (s *Server) GetCategoryBreakdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, from, to, err := rangeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	categoryStats, err := s.StatsService.CategoryBreakdownInRange(ctx, userID, from, to)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(categoryStats))
	for _, stat := range categoryStats {
		items = append(items, map[string]interface{}{
			"type":     string(stat.Type),
			"category": stat.Category,
			"amount":   stat.Amount.StringFixed(2),
		})
	}

	return newStruct(map[string]interface{}{"categories": items})
}

// GetHistoryPeriods handles the GetHistoryPeriods RPC
func (s *Server) GetHistoryPeriods(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	years, err := s.StatsService.DistinctYears(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(years))
	for _, year := range years {
		items = append(items, year)
	}

	return newStruct(map[string]interface{}{"years": items})
}

// GetHistoryData handles the GetHistoryData RPC.
// Request: timeframe ("month" or "year"), year, and month (1-12) for the month timeframe.
func (s *Server) GetHistoryData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	timeframe, err := stats.ParseTimeframe(stringField(req, "timeframe"))
	if err != nil {
		return nil, mapError(err)
	}

	year, err := intField(req, "year")
	if err != nil {
		return nil, err
	}

	var month int
	if timeframe == stats.TimeframeMonth {
		if month, err = intField(req, "month"); err != nil {
			return nil, err
		}
	}

	points, err := s.StatsService.HistoryData(ctx, userID, timeframe, year, time.Month(month))
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(points))
	for _, p := range points {
		items = append(items, map[string]interface{}{
			"label":   p.Label,
			"income":  p.Income.StringFixed(2),
			"expense": p.Expense.StringFixed(2),
		})
	}

	return newStruct(map[string]interface{}{"timeframe": string(timeframe), "points": items})
}

// callerID returns the user resolved by AuthInterceptor
func callerID(ctx context.Context) (string, error) {
	userID, ok := domain.UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing user identity")
	}
	return userID, nil
}

func rangeRequest(ctx context.Context, req *structpb.Struct) (string, time.Time, time.Time, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	from, err := dateField(req, "from")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	to, err := dateField(req, "to")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	return userID, from, to, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func amountField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	raw := stringField(req, name)
	if raw == "" {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return amount, nil
}

func dateField(req *structpb.Struct, name string) (time.Time, error) {
	raw := stringField(req, name)
	if raw == "" {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	date, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s format: expected YYYY-MM-DD", name)
	}
	return date, nil
}

func idField(req *structpb.Struct, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(req, name))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

func intField(req *structpb.Struct, name string) (int, error) {
	value, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	n := value.GetNumberValue()
	if n != math.Trunc(n) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int(n), nil
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return resp, nil
}

func transactionToMap(tx *domain.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":          tx.ID.String(),
		"amount":      tx.Amount.StringFixed(2),
		"type":        string(tx.Type),
		"date":        tx.Date.Format(domain.DateLayout),
		"category":    tx.Category,
		"description": tx.Description,
		"created_at":  tx.CreatedAt.Format(time.RFC3339),
		"updated_at":  tx.UpdatedAt.Format(time.RFC3339),
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var storageErr *domain.StorageError

	switch {
	case errors.As(err, &validationErr):
		return status.Errorf(codes.InvalidArgument, "%s", err)
	case errors.As(err, &notFoundErr):
		return status.Errorf(codes.NotFound, "%s", err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err)
	case errors.As(err, &storageErr):
		return status.Errorf(codes.Unavailable, "%s", err)
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
}

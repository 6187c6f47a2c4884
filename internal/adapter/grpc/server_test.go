package grpc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/logger"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
	"github.com/simaogato/ledger-backend/internal/usecase/rollup"
	"github.com/simaogato/ledger-backend/internal/usecase/stats"
)

const testToken = "test-token"

type testClient struct {
	conn *grpc.ClientConn
}

func (c *testClient) call(ctx context.Context, user, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}

	md := metadata.Pairs("authorization", testToken)
	if user != "" {
		md.Append(UserIDHeader, user)
	}

	out := new(structpb.Struct)
	err = c.conn.Invoke(metadata.NewOutgoingContext(ctx, md), FullMethod(method), in, out)
	return out, err
}

func startTestServer(t *testing.T) *testClient {
	t.Helper()

	db := sqlite.OpenTestDB(t)
	ctx := context.Background()
	directory := sqlstore.NewDirectoryRepository(db)
	require.NoError(t, directory.CreateCategory(ctx, &domain.Category{UserID: "alice", Name: "Salary", Type: domain.TransactionTypeIncome, CreatedAt: time.Now()}))
	require.NoError(t, directory.CreateDescription(ctx, &domain.Description{UserID: "alice", Name: "Payday", Type: domain.TransactionTypeIncome, CreatedAt: time.Now()}))
	require.NoError(t, directory.CreateCategory(ctx, &domain.Category{UserID: "alice", Name: "Food", Type: domain.TransactionTypeExpense, CreatedAt: time.Now()}))
	require.NoError(t, directory.CreateDescription(ctx, &domain.Description{UserID: "alice", Name: "Groceries", Type: domain.TransactionTypeExpense, CreatedAt: time.Now()}))

	ledgerService := ledger.NewLedgerService(sqlstore.NewUnitOfWork(db, sql.LevelDefault), rollup.EditModeCorrected, logger.NewNop())
	statsService := stats.NewStatsService(sqlstore.NewTransactionRepository(db), sqlstore.NewHistoryRepository(db), 366)

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger.NewNop()),
		AuthInterceptor(testToken),
		TimeoutInterceptor(5*time.Second),
	))
	RegisterLedgerServiceServer(server, NewServer(ledgerService, statsService))

	listener := bufconn.Listen(1 << 20)
	go server.Serve(listener)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testClient{conn: conn}
}

func TestServer_TransactionLifecycle(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	created, err := client.call(ctx, "alice", "CreateTransaction", map[string]interface{}{
		"amount":      "500",
		"type":        "income",
		"date":        "2024-01-10",
		"category":    "Salary",
		"description": "Payday",
	})
	require.NoError(t, err)

	tx := created.GetFields()["transaction"].GetStructValue().AsMap()
	assert.Equal(t, "500.00", tx["amount"])
	assert.Equal(t, "2024-01-10", tx["date"])
	id := tx["id"].(string)

	balance, err := client.call(ctx, "alice", "GetBalance", map[string]interface{}{"from": "2024-01-01", "to": "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "500.00", balance.AsMap()["income"])
	assert.Equal(t, "0.00", balance.AsMap()["expense"])

	_, err = client.call(ctx, "alice", "EditTransaction", map[string]interface{}{"id": id, "amount": "450.50", "date": "2024-02-01"})
	require.NoError(t, err)

	balance, err = client.call(ctx, "alice", "GetBalance", map[string]interface{}{"from": "2024-01-01", "to": "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", balance.AsMap()["income"])

	history, err := client.call(ctx, "alice", "GetHistoryData", map[string]interface{}{"timeframe": "year", "year": 2024})
	require.NoError(t, err)
	points := history.AsMap()["points"].([]interface{})
	require.Len(t, points, 12)
	assert.Equal(t, "450.50", points[1].(map[string]interface{})["income"])

	periods, err := client.call(ctx, "alice", "GetHistoryPeriods", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(2024)}, periods.AsMap()["years"])

	listed, err := client.call(ctx, "alice", "ListTransactions", map[string]interface{}{"from": "2024-01-01", "to": "2024-12-31"})
	require.NoError(t, err)
	assert.Len(t, listed.AsMap()["transactions"], 1)

	_, err = client.call(ctx, "alice", "DeleteTransaction", map[string]interface{}{"id": id})
	require.NoError(t, err)

	_, err = client.call(ctx, "alice", "DeleteTransaction", map[string]interface{}{"id": id})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_CategoryBreakdown(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	for _, amount := range []string{"12.50", "7.50"} {
		_, err := client.call(ctx, "alice", "CreateTransaction", map[string]interface{}{
			"amount": amount, "type": "expense", "date": "2024-03-03", "category": "Food", "description": "Groceries",
		})
		require.NoError(t, err)
	}

	resp, err := client.call(ctx, "alice", "GetCategoryBreakdown", map[string]interface{}{"from": "2024-03-01", "to": "2024-03-31"})
	require.NoError(t, err)

	categories := resp.AsMap()["categories"].([]interface{})
	require.Len(t, categories, 1)
	assert.Equal(t, map[string]interface{}{"type": "expense", "category": "Food", "amount": "20.00"}, categories[0])
}

func TestServer_ErrorCodes(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		user   string
		method string
		req    map[string]interface{}
		code   codes.Code
	}{
		{
			name:   "missing user",
			method: "GetHistoryPeriods",
			req:    map[string]interface{}{},
			code:   codes.Unauthenticated,
		},
		{
			name:   "malformed amount",
			user:   "alice",
			method: "CreateTransaction",
			req:    map[string]interface{}{"amount": "ten", "type": "income", "date": "2024-01-01", "category": "Salary", "description": "Payday"},
			code:   codes.InvalidArgument,
		},
		{
			name:   "negative amount",
			user:   "alice",
			method: "CreateTransaction",
			req:    map[string]interface{}{"amount": "-1", "type": "income", "date": "2024-01-01", "category": "Salary", "description": "Payday"},
			code:   codes.InvalidArgument,
		},
		{
			name:   "unknown category",
			user:   "alice",
			method: "CreateTransaction",
			req:    map[string]interface{}{"amount": "1", "type": "income", "date": "2024-01-01", "category": "Lottery", "description": "Payday"},
			code:   codes.NotFound,
		},
		{
			name:   "category of another user",
			user:   "bob",
			method: "CreateTransaction",
			req:    map[string]interface{}{"amount": "1", "type": "income", "date": "2024-01-01", "category": "Salary", "description": "Payday"},
			code:   codes.NotFound,
		},
		{
			name:   "inverted range",
			user:   "alice",
			method: "GetBalance",
			req:    map[string]interface{}{"from": "2024-02-01", "to": "2024-01-01"},
			code:   codes.InvalidArgument,
		},
		{
			name:   "bad id",
			user:   "alice",
			method: "DeleteTransaction",
			req:    map[string]interface{}{"id": "not-a-uuid"},
			code:   codes.InvalidArgument,
		},
		{
			name:   "bad timeframe",
			user:   "alice",
			method: "GetHistoryData",
			req:    map[string]interface{}{"timeframe": "week", "year": 2024},
			code:   codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.call(ctx, tt.user, tt.method, tt.req)
			assert.Equal(t, tt.code, status.Code(err), "error: %v", err)
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "validation", err: domain.NewValidationError("amount", "must be positive"), code: codes.InvalidArgument},
		{name: "not found", err: domain.NewNotFoundError("transaction", "x"), code: codes.NotFound},
		{name: "wrapped not found", err: fmt.Errorf("edit: %w", domain.NewNotFoundError("transaction", "x")), code: codes.NotFound},
		{name: "storage", err: domain.NewStorageError("commit", errors.New("disk full")), code: codes.Unavailable},
		{name: "diverged", err: domain.NewStorageError("decrement", domain.ErrRollupDiverged), code: codes.Unavailable},
		{name: "deadline", err: domain.NewStorageError("commit", context.DeadlineExceeded), code: codes.DeadlineExceeded},
		{name: "status passes through", err: status.Error(codes.PermissionDenied, "no"), code: codes.PermissionDenied},
		{name: "unknown", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}

	assert.NoError(t, mapError(nil))
}

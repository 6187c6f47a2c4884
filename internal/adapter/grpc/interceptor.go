package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/logger"
)

// UserIDHeader carries the opaque id of the authenticated user
const UserIDHeader = "x-user-id"

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata and resolves the caller.
// If the token or the user id is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the user id attached to the context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		userIDs := md.Get(UserIDHeader)
		if len(userIDs) == 0 || userIDs[0] == "" {
			return nil, status.Error(codes.Unauthenticated, "missing x-user-id header")
		}

		return handler(domain.WithUserID(ctx, userIDs[0]), req)
	}
}

// TimeoutInterceptor bounds every call, and with it every storage operation,
// by timeout
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

// LoggingInterceptor logs the outcome and latency of every call
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []interface{}{
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		}

		switch code {
		case codes.OK:
			log.Debug("grpc call", fields...)
		case codes.Internal, codes.Unavailable, codes.DeadlineExceeded:
			log.Error("grpc call failed", append(fields, "error", err)...)
		default:
			log.Info("grpc call rejected", append(fields, "error", err)...)
		}

		return resp, err
	}
}

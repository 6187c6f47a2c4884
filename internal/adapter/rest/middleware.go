package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/logger"
)

const userIDHeader = "X-User-ID"

// RequireAuth rejects requests without the shared API token or a user id
// and stores the user id in the request context
func RequireAuth(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if len(token) > 7 && (token[:7] == "Bearer " || token[:7] == "bearer ") {
			token = token[7:]
		}

		if token == "" {
			respondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("missing authorization header"))
			return
		}
		if token != validToken {
			respondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("invalid token"))
			return
		}

		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			respondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("missing x-user-id header"))
			return
		}

		c.Request = c.Request.WithContext(domain.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// Timeout bounds the request context, and every storage call made with it
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs every request with its status and latency
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Info("http request rejected", fields...)
		default:
			log.Debug("http request", fields...)
		}
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := domain.UserIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("missing user identity"))
	}
	return userID, ok
}

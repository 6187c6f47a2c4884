package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/stats"
)

// APIError is the body of every error response
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps an APIError
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var storageErr *domain.StorageError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "deadline_exceeded", err)
	case errors.As(err, &storageErr):
		respondError(c, http.StatusServiceUnavailable, "unavailable", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}

type transactionResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID.String(),
		Amount:      tx.Amount.StringFixed(2),
		Type:        string(tx.Type),
		Date:        tx.Date.Format(domain.DateLayout),
		Category:    tx.Category,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
	}
}

type balanceResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

type categoryStatResponse struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type historyPointResponse struct {
	Label   int    `json:"label"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func newHistoryPointResponses(points []stats.HistoryPoint) []historyPointResponse {
	out := make([]historyPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, historyPointResponse{
			Label:   p.Label,
			Income:  p.Income.StringFixed(2),
			Expense: p.Expense.StringFixed(2),
		})
	}
	return out
}

type categoryResponse struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

type descriptionResponse struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/directory"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
	"github.com/simaogato/ledger-backend/internal/usecase/stats"
)

// Handler serves the JSON API
type Handler struct {
	LedgerService    *ledger.LedgerService
	StatsService     *stats.StatsService
	DirectoryService *directory.DirectoryService
}

// NewHandler creates a new Handler instance
func NewHandler(ledgerService *ledger.LedgerService, statsService *stats.StatsService, directoryService *directory.DirectoryService) *Handler {
	return &Handler{
		LedgerService:    ledgerService,
		StatsService:     statsService,
		DirectoryService: directoryService,
	}
}

type createTransactionRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type editTransactionRequest struct {
	Amount string `json:"amount" binding:"required"`
	Date   string `json:"date" binding:"required"`
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
	Type string `json:"type" binding:"required"`
}

type createDescriptionRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		writeError(c, err)
		return
	}

	tx, err := h.LedgerService.RecordCreate(c.Request.Context(), userID, ledger.CreateTransactionInput{
		Amount:      amount,
		Type:        txType,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}

// EditTransaction handles PATCH /api/transactions/:id
func (h *Handler) EditTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req editTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	tx, err := h.LedgerService.RecordEdit(c.Request.Context(), userID, ledger.EditTransactionInput{
		ID:     id,
		Amount: amount,
		Date:   date,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.LedgerService.RecordDelete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTransactions handles GET /api/transactions-history?from=&to=
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	transactions, err := h.StatsService.TransactionsInRange(c.Request.Context(), userID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, newTransactionResponse(tx))
	}

	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

// GetBalance handles GET /api/stats/balance?from=&to=
func (h *Handler) GetBalance(c *gin.Context) {
	userID, from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	balance, err := h.StatsService.BalanceInRange(c.Request.Context(), userID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, balanceResponse{
		Income:  balance.Income.StringFixed(2),
		Expense: balance.Expense.StringFixed(2),
		Net:     balance.Net().StringFixed(2),
	})
}

// GetCategoryBreakdown handles GET /api/stats/categories?from=&to=
func (h *Handler) GetCategoryBreakdown(c *gin.Context) {
	userID, from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	categoryStats, err := h.StatsService.CategoryBreakdownInRange(c.Request.Context(), userID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]categoryStatResponse, 0, len(categoryStats))
	for _, stat := range categoryStats {
		out = append(out, categoryStatResponse{
			Type:     string(stat.Type),
			Category: stat.Category,
			Amount:   stat.Amount.StringFixed(2),
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetHistoryPeriods handles GET /api/history-periods
func (h *Handler) GetHistoryPeriods(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	years, err := h.StatsService.DistinctYears(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// GetHistoryData handles GET /api/history-data?timeframe=month|year&year=&month=
func (h *Handler) GetHistoryData(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	timeframe, err := stats.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		writeError(c, err)
		return
	}

	year, err := parseIntQuery(c, "year")
	if err != nil {
		writeError(c, err)
		return
	}

	var month int
	if timeframe == stats.TimeframeMonth {
		if month, err = parseIntQuery(c, "month"); err != nil {
			writeError(c, err)
			return
		}
	}

	points, err := h.StatsService.HistoryData(c.Request.Context(), userID, timeframe, year, time.Month(month))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeframe": timeframe, "points": newHistoryPointResponses(points)})
}

// ListCategories handles GET /api/categories?type=
func (h *Handler) ListCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.DirectoryService.ListCategories(c.Request.Context(), userID, domain.TransactionType(c.Query("type")))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryResponse{
			Name:      category.Name,
			Icon:      category.Icon,
			Type:      string(category.Type),
			CreatedAt: category.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// CreateCategory handles POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	category, err := h.DirectoryService.CreateCategory(c.Request.Context(), userID, req.Name, req.Icon, domain.TransactionType(req.Type))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, categoryResponse{
		Name:      category.Name,
		Icon:      category.Icon,
		Type:      string(category.Type),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	})
}

// ListDescriptions handles GET /api/descriptions?type=
func (h *Handler) ListDescriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	descriptions, err := h.DirectoryService.ListDescriptions(c.Request.Context(), userID, domain.TransactionType(c.Query("type")))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]descriptionResponse, 0, len(descriptions))
	for _, d := range descriptions {
		out = append(out, descriptionResponse{
			Name:      d.Name,
			Type:      string(d.Type),
			CreatedAt: d.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"descriptions": out})
}

// CreateDescription handles POST /api/descriptions
func (h *Handler) CreateDescription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	description, err := h.DirectoryService.CreateDescription(c.Request.Context(), userID, req.Name, domain.TransactionType(req.Type))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, descriptionResponse{
		Name:      description.Name,
		Type:      string(description.Type),
		CreatedAt: description.CreatedAt.Format(time.RFC3339),
	})
}

// HealthCheck handles GET /healthz
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) rangeQuery(c *gin.Context) (string, time.Time, time.Time, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return "", time.Time{}, time.Time{}, false
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		writeError(c, err)
		return "", time.Time{}, time.Time{}, false
	}

	to, err := parseDateQuery(c, "to")
	if err != nil {
		writeError(c, err)
		return "", time.Time{}, time.Time{}, false
	}

	return userID, from, to, true
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domain.NewValidationError("amount", "must be a decimal number")
	}
	return amount, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

func parseDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(name, "is required")
	}

	date, err := domain.ParseDate(raw)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return time.Time{}, domain.NewValidationError(name, validationErr.Message)
		}
		return time.Time{}, err
	}
	return date, nil
}

func parseIntQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, domain.NewValidationError(name, "is required")
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, fmt.Sprintf("must be an integer, got %q", raw))
	}
	return n, nil
}

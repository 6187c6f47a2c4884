package rest

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/simaogato/ledger-backend/internal/logger"
)

// RouterConfig holds everything the HTTP router needs
type RouterConfig struct {
	Handler        *Handler
	Log            *logger.Logger
	APIToken       string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter builds the gin engine serving the JSON API
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", userIDHeader},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// Public
	router.GET("/healthz", HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(RequireAuth(cfg.APIToken))
	if cfg.RequestTimeout > 0 {
		api.Use(Timeout(cfg.RequestTimeout))
	}

	// Transactions
	api.POST("/transactions", cfg.Handler.CreateTransaction)
	api.PATCH("/transactions/:id", cfg.Handler.EditTransaction)
	api.DELETE("/transactions/:id", cfg.Handler.DeleteTransaction)
	api.GET("/transactions-history", cfg.Handler.ListTransactions)

	// Stats
	api.GET("/stats/balance", cfg.Handler.GetBalance)
	api.GET("/stats/categories", cfg.Handler.GetCategoryBreakdown)
	api.GET("/history-periods", cfg.Handler.GetHistoryPeriods)
	api.GET("/history-data", cfg.Handler.GetHistoryData)

	// Directories
	api.GET("/categories", cfg.Handler.ListCategories)
	api.POST("/categories", cfg.Handler.CreateCategory)
	api.GET("/descriptions", cfg.Handler.ListDescriptions)
	api.POST("/descriptions", cfg.Handler.CreateDescription)

	return router
}

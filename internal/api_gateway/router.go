package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/handler"
	"github.com/digimonpay/wallet-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	itemHandler *handler.ItemHandler,
	transactionHandler *handler.TransactionHandler,
	exchangeHandler *handler.ExchangeHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.PATCH("/:id", accountHandler.Patch)
			accounts.DELETE("/:id", accountHandler.Archive)
			accounts.GET("/:id/balance", transactionHandler.GetBalance)
			accounts.GET("/:id/records", transactionHandler.GetByAccountID)
		}
		v1.GET("/owners/:id/accounts", accountHandler.GetByOwnerID)

		// Catalog item operations
		items := v1.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("/:id", itemHandler.GetByID)
			items.PATCH("/:id", itemHandler.Patch)
			items.DELETE("/:id", itemHandler.Archive)
		}
		v1.GET("/merchants/:id/items", itemHandler.GetByMerchant)

		// Money movement operations. All of them respond synchronously with
		// a COMMITTED record or a structured error.
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/purchase", transactionHandler.Purchase)
			transactions.POST("/exchange", transactionHandler.Exchange)
			transactions.POST("/deposit", transactionHandler.Deposit)
			transactions.POST("/withdraw", transactionHandler.Withdraw)
			transactions.GET("/:id", transactionHandler.GetByID)
		}

		// Exchange rate operations
		exchange := v1.Group("/exchange")
		{
			exchange.GET("/quote", exchangeHandler.Quote)
			exchange.GET("/rates", exchangeHandler.GetRates)
			exchange.PUT("/rates", exchangeHandler.RefreshRates)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

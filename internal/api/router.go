package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/the-giftist/funding-ledger/internal/api/handler"
	"github.com/the-giftist/funding-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	contributionHandler *handler.ContributionHandler,
	goalHandler *handler.GoalHandler,
	webhookHandler *handler.WebhookHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Custodial wallet operations
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:user_id", walletHandler.Get)
			wallets.GET("/:user_id/transactions", walletHandler.ListTransactions)
			wallets.POST("/deposits", walletHandler.RequestDeposit)
			wallets.POST("/fund-item", walletHandler.FundItem)
			wallets.POST("/withdrawals", walletHandler.Withdraw)
		}

		// Contribution lifecycle
		contributions := v1.Group("/contributions")
		{
			contributions.POST("", contributionHandler.Open)
			contributions.POST("/:id/charges", contributionHandler.Charge)
		}

		// Funding views and goal pricing on catalog entities
		items := v1.Group("/items")
		{
			items.GET("/:id/contributions", contributionHandler.ListByItem)
			items.PUT("/:id/goal", goalHandler.PriceGoal)
		}
		events := v1.Group("/events")
		{
			events.GET("/:id/contributions", contributionHandler.ListByEvent)
		}

		// Signed provider callbacks
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/payments", webhookHandler.HandlePaymentEvent)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/atm-ledger/internal/api_gateway/handler"
	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	sessions     *handler.SessionHandler
	accounts     *handler.AccountHandler
	transactions *handler.TransactionHandler
	technician   *handler.TechnicianHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	sessions service.SessionService,
	technician service.TechnicianService,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	requireSession := middleware.SessionAuth(sessions, middleware.ErrIs(service.ErrInvalidSession), logger)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sessions", h.sessions.Login)
		v1.DELETE("/sessions", h.sessions.Logout)

		accounts := v1.Group("/accounts", requireSession)
		{
			accounts.GET("/me", h.accounts.GetMe)
			accounts.GET("/me/transactions", h.accounts.GetTransactions)
		}

		transactions := v1.Group("/transactions", requireSession)
		{
			transactions.POST("/deposit", h.transactions.Deposit)
			transactions.POST("/withdraw", h.transactions.Withdraw)
			transactions.POST("/transfer", h.transactions.Transfer)
		}

		v1.POST("/receipts", requireSession, h.transactions.PrintReceipt)

		tech := v1.Group("/technician", middleware.TechnicianAuth(technician, logger))
		{
			tech.GET("/status", h.technician.Status)
			tech.POST("/refill-paper", h.technician.RefillPaper)
			tech.POST("/refill-ink", h.technician.RefillInk)
			tech.POST("/add-cash", h.technician.AddCash)
			tech.POST("/collect-cash", h.technician.CollectCash)
			tech.POST("/firmware", h.technician.UpdateFirmware)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

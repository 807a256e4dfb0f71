// Package api_gateway is the HTTP front of the ATM core.
package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/atm-ledger/internal/api_gateway/handler"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/config"
	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into
type Services struct {
	Sessions     service.SessionService
	Accounts     service.AccountService
	Transactions service.TransactionService
	Technician   service.TechnicianService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, handlers{
		sessions:     handler.NewSessionHandler(log, services.Sessions),
		accounts:     handler.NewAccountHandler(log, services.Accounts),
		transactions: handler.NewTransactionHandler(log, services.Transactions),
		technician:   handler.NewTechnicianHandler(log, services.Technician),
	}, services.Sessions, services.Technician)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within timeout
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}

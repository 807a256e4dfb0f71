package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/logger"
	"github.com/gin-gonic/gin"
)

// SessionHandler handles card login and logout
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// Login verifies card and PIN and returns a session token
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, token, err := h.sessionService.Login(c.Request.Context(), req.CardNumber, req.PIN)
	if err != nil {
		if errors.Is(err, account.ErrAuthentication) {
			logger.FromContext(c.Request.Context(), h.logger).Info("Login rejected", "card", logger.MaskCard(req.CardNumber))
			RespondWithError(c, http.StatusUnauthorized, string(shared.FailureReasonAuthFailed), reasonMessages[shared.FailureReasonAuthFailed])
			return
		}
		logger.FromContext(c.Request.Context(), h.logger).Error("Login failed", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, LoginResponse{Token: token, Account: mapAccountToResponse(acc)})
}

// Logout ends the current session
func (h *SessionHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if err := h.sessionService.Logout(c.Request.Context(), token); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Logout failed", "error", err)
		RespondInternalError(c)
		return
	}
	RespondNoContent(c)
}

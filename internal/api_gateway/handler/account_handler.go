package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles read requests for the session's account
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// GetMe returns the committed account state
func (h *AccountHandler) GetMe(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	acc, err := h.accountService.GetAccountDetails(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to get account", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetTransactions returns the account's records, newest first
func (h *AccountHandler) GetTransactions(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.accountService.GetTransactionHistory(c.Request.Context(), accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to get transactions", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, mapRecordToResponse(record))
	}
	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

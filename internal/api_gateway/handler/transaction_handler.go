package handler

import (
	"log/slog"
	"net/http"

	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/transaction_processor/components"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles money movements and receipts for the session's account
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, string(shared.FailureReasonInvalidAmount), "Invalid request body: "+err.Error())
		return
	}

	res, err := h.transactionService.Deposit(c.Request.Context(), middleware.GetAccountID(c), req.Amount)
	if err != nil {
		respondOperationError(c, h.logger, "deposit", err)
		return
	}
	RespondOK(c, OperationResponse{Success: res.Success, Balance: res.Balance})
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, string(shared.FailureReasonInvalidAmount), "Invalid request body: "+err.Error())
		return
	}

	res, err := h.transactionService.Withdraw(c.Request.Context(), middleware.GetAccountID(c), req.Amount)
	if err != nil {
		respondOperationError(c, h.logger, "withdraw", err)
		return
	}
	RespondOK(c, OperationResponse{Success: res.Success, Balance: res.Balance})
}

// Transfer moves money to the account holding the target card
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.transactionService.Transfer(c.Request.Context(), middleware.GetAccountID(c), req.ToCardNumber, req.Amount)
	if err != nil {
		respondOperationError(c, h.logger, "transfer", err)
		return
	}
	RespondOK(c, OperationResponse{Success: res.Success, Balance: res.Balance})
}

// PrintReceipt always answers 200; supply problems come back as warnings
func (h *TransactionHandler) PrintReceipt(c *gin.Context) {
	var req PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt := h.transactionService.PrintReceipt(c.Request.Context(), components.ReceiptRequest{
		AccountID: middleware.GetAccountID(c),
		Type:      req.Type,
		Amount:    req.Amount,
		Balance:   req.Balance,
	})
	RespondOK(c, mapReceiptToResponse(receipt))
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/logger"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
)

var reasonMessages = map[shared.FailureReason]string{
	shared.FailureReasonInvalidAmount:           "Amount must be greater than zero",
	shared.FailureReasonAuthFailed:              "Card number or PIN is incorrect",
	shared.FailureReasonAccountNotFound:         "Account not found",
	shared.FailureReasonTargetNotFound:          "Target account not found",
	shared.FailureReasonInsufficientBalance:     "Insufficient balance",
	shared.FailureReasonInsufficientMachineCash: "ATM does not have enough cash",
	shared.FailureReasonOutOfPaper:              "Out of paper",
	shared.FailureReasonOutOfInk:                "Out of ink",
	shared.FailureReasonUnsupported:             "Operation not supported",
	shared.FailureReasonStorageFailure:          "The operation could not be completed, nothing was changed",
}

// respondOperationError maps an ATM operation error to its HTTP status and stable code
func respondOperationError(c *gin.Context, log *slog.Logger, op string, err error) {
	reason := processor.FailureReasonFor(err)
	log = logger.FromContext(c.Request.Context(), log).With("operation", op, "reason", reason)

	var status int
	switch reason {
	case shared.FailureReasonInvalidAmount:
		status = http.StatusBadRequest
	case shared.FailureReasonAuthFailed:
		status = http.StatusUnauthorized
	case shared.FailureReasonAccountNotFound, shared.FailureReasonTargetNotFound:
		status = http.StatusNotFound
	case shared.FailureReasonInsufficientBalance,
		shared.FailureReasonInsufficientMachineCash,
		shared.FailureReasonOutOfPaper,
		shared.FailureReasonOutOfInk:
		status = http.StatusUnprocessableEntity
	case shared.FailureReasonUnsupported:
		status = http.StatusNotImplemented
	case shared.FailureReasonStorageFailure:
		log.Error("ATM operation failed", "error", err)
		RespondWithError(c, http.StatusInternalServerError, string(reason), reasonMessages[reason])
		return
	default:
		if c.Request.Context().Err() != nil {
			log.Warn("ATM operation abandoned by client", "error", err)
		} else {
			log.Error("ATM operation failed", "error", err)
		}
		RespondInternalError(c)
		return
	}

	log.Info("ATM operation rejected")
	RespondWithError(c, status, string(reason), reasonMessages[reason])
}

package handler

import (
	"time"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/components"
	"github.com/shopspring/decimal"
)

// LoginRequest carries card credentials
type LoginRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	PIN        string `json:"pin" binding:"required"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// AccountResponse represents an account in API responses. The card number is masked.
type AccountResponse struct {
	AccountID  string          `json:"account_id"`
	CardNumber string          `json:"card_number"`
	Balance    decimal.Decimal `json:"balance"`
	UpdatedAt  string          `json:"updated_at"`
}

// AmountRequest is the body of deposit and withdraw
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the body of transfer
type TransferRequest struct {
	ToCardNumber string          `json:"to_card_number" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
}

// OperationResponse reports a completed money movement
type OperationResponse struct {
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
}

// PrintReceiptRequest describes the operation to print a receipt for
type PrintReceiptRequest struct {
	Type    string          `json:"type" binding:"required,oneof=DEPOSIT WITHDRAW TRANSFER"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// ReceiptResponse is a printed receipt
type ReceiptResponse struct {
	Text      string                  `json:"text"`
	Lines     []string                `json:"lines"`
	Warnings  []machine.SupplyWarning `json:"warnings"`
	PrintedAt string                  `json:"printed_at"`
}

// TransactionResponse represents a transaction record in API responses
type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
}

// MachineStatusResponse is the technician view of the machine state
type MachineStatusResponse struct {
	Cash            decimal.Decimal `json:"cash"`
	Paper           int             `json:"paper"`
	Ink             int             `json:"ink"`
	FirmwareVersion string          `json:"firmware_version"`
	UpdatedAt       string          `json:"updated_at"`
}

// TechnicianActionRequest carries the optional arguments of technician mutations
type TechnicianActionRequest struct {
	Units   int             `json:"units"`
	Amount  decimal.Decimal `json:"amount"`
	Version string          `json:"version"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		AccountID:  acc.ID,
		CardNumber: logger.MaskCard(acc.CardNumber),
		Balance:    acc.Balance,
		UpdatedAt:  acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapRecordToResponse(record *transaction.Record) TransactionResponse {
	return TransactionResponse{
		ID:        record.ID.String(),
		Type:      string(record.Type),
		Amount:    record.Amount,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
}

func mapReceiptToResponse(receipt *components.Receipt) ReceiptResponse {
	warnings := receipt.Warnings
	if warnings == nil {
		warnings = []machine.SupplyWarning{}
	}
	return ReceiptResponse{
		Text:      receipt.Text(),
		Lines:     receipt.Lines,
		Warnings:  warnings,
		PrintedAt: receipt.PrintedAt.Format(time.RFC3339),
	}
}

func mapStateToResponse(state *machine.State) MachineStatusResponse {
	return MachineStatusResponse{
		Cash:            state.Cash,
		Paper:           state.Paper,
		Ink:             state.Ink,
		FirmwareVersion: state.FirmwareVersion,
		UpdatedAt:       state.UpdatedAt.Format(time.RFC3339),
	}
}

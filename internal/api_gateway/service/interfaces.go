package service

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/transaction_processor/components"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
)

// SessionService defines card login and session lookup
type SessionService interface {
	// Login checks card and PIN and opens a session.
	// Returns account.ErrAuthentication on a mismatch.
	Login(ctx context.Context, cardNumber, pin string) (*account.Account, string, error)

	// Logout ends the session behind token
	Logout(ctx context.Context, token string) error

	// Resolve returns the account id a token belongs to
	Resolve(ctx context.Context, token string) (string, error)
}

// AccountService defines read operations on the logged-in account
type AccountService interface {
	// GetAccountDetails returns the committed state of an account.
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountDetails(ctx context.Context, accountID string) (*account.Account, error)

	// GetTransactionHistory returns a page of records, newest first, and the total count
	GetTransactionHistory(ctx context.Context, accountID string, page, perPage int) ([]*transaction.Record, int64, error)
}

// TransactionService defines the money movements and receipt printing
type TransactionService interface {
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error)
	Transfer(ctx context.Context, accountID, toCardNumber string, amount decimal.Decimal) (*processor.Result, error)
	PrintReceipt(ctx context.Context, req components.ReceiptRequest) *components.Receipt
}

// TechnicianService is the technician console as seen by the HTTP layer
type TechnicianService interface {
	Authorize(code string) bool
	ViewMachineStatus(ctx context.Context) (*machine.State, error)
	RefillPaper(ctx context.Context, units int) (*components.CapabilityResult, error)
	RefillInk(ctx context.Context, units int) (*components.CapabilityResult, error)
	AddCash(ctx context.Context, amount decimal.Decimal) (*components.CapabilityResult, error)
	CollectAllCash(ctx context.Context) (*components.CapabilityResult, error)
	UpdateFirmware(ctx context.Context, version string) (*components.CapabilityResult, error)
}

// Authenticator verifies card credentials
type Authenticator interface {
	Login(ctx context.Context, cardNumber, pin string) (*account.Account, error)
}

// SessionStore keeps session tokens
type SessionStore interface {
	Create(ctx context.Context, accountID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// ReceiptPrinter prints receipts
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, req components.ReceiptRequest) *components.Receipt
}

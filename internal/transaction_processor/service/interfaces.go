package service

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Result is the outcome of a committed money movement
type Result struct {
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
}

// ProcessingService runs deposits, withdrawals and transfers as single atomic units.
// On success acc is refreshed with the committed balance.
type ProcessingService interface {
	Deposit(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error)
	Withdraw(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error)
	Transfer(ctx context.Context, acc *account.Account, toCard string, amount decimal.Decimal) (*Result, error)
}

// TransactionValidator checks preconditions against locked state
type TransactionValidator interface {
	ValidateAmount(amount decimal.Decimal) error
	ValidateWithdrawal(acc *account.Account, state *machine.State, amount decimal.Decimal) error
	ValidateTransfer(sender *account.Account, amount decimal.Decimal) error
}

// AccountManager locks and moves balances within a transaction
type AccountManager interface {
	Lock(ctx context.Context, tx pgx.Tx, accountID string) (*account.Account, error)

	// LockTransferPair resolves the receiver by card and locks both accounts in id order
	LockTransferPair(ctx context.Context, tx pgx.Tx, senderID, receiverCard string) (sender, receiver *account.Account, err error)
	ApplyDelta(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal) (decimal.Decimal, error)
}

// ResourceLedger tracks cash and printer supplies held by the machine
type ResourceLedger interface {
	CurrentState(ctx context.Context) (*machine.State, error)
	LockState(ctx context.Context, tx pgx.Tx) (*machine.State, error)
	AddCash(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error)
	DecrementCashForWithdrawal(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error)
	ConsumeSupplies(ctx context.Context, tx pgx.Tx) (*machine.State, []machine.SupplyWarning, error)
}

// RecordKeeper appends audit records
type RecordKeeper interface {
	Append(ctx context.Context, tx pgx.Tx, records ...*transaction.Record) error
}

// OutboxManager queues journal events in the same transaction as the change they describe
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, events ...*journal.Event) error
}

// Package transaction holds the append-only audit log of money movements.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Type is the kind of money movement a record describes
type Type string

const (
	TypeDeposit     Type = "DEPOSIT"
	TypeWithdraw    Type = "WITHDRAW"
	TypeTransferOut Type = "TRANSFER_OUT"
	TypeTransferIn  Type = "TRANSFER_IN"
)

// Record is an immutable audit entry for one side of a completed movement
type Record struct {
	ID        uuid.UUID       `json:"id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      Type            `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord builds a record with a fresh id
func NewRecord(accountID string, typ Type, amount decimal.Decimal, at time.Time) *Record {
	return &Record{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Type:      typ,
		CreatedAt: at,
	}
}

// NewTransferPair builds the TRANSFER_OUT and TRANSFER_IN records of one transfer.
// Both carry the same amount and timestamp.
func NewTransferPair(fromID, toID string, amount decimal.Decimal, at time.Time) (out, in *Record) {
	return NewRecord(fromID, TypeTransferOut, amount, at), NewRecord(toID, TypeTransferIn, amount, at)
}

// Repository appends and lists transaction records
type Repository interface {
	Create(ctx context.Context, record *Record) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*Record, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

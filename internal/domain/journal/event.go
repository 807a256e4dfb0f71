// Package journal describes the ATM electronic journal: one event per committed
// money movement or printed receipt, archived outside the ledger store.
package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind of journal event
type Kind string

const (
	KindDeposit        Kind = "DEPOSIT"
	KindWithdraw       Kind = "WITHDRAW"
	KindTransferOut    Kind = "TRANSFER_OUT"
	KindTransferIn     Kind = "TRANSFER_IN"
	KindReceiptPrinted Kind = "RECEIPT_PRINTED"
)

// Event is a single journal line
type Event struct {
	EventID       uuid.UUID       `json:"event_id"`
	Kind          Kind            `json:"kind"`
	AccountID     string          `json:"account_id,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"`
	RecordID      *uuid.UUID      `json:"record_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	MachineCash   decimal.Decimal `json:"machine_cash"`
	Paper         int             `json:"paper"`
	Ink           int             `json:"ink"`
	Warnings      []string        `json:"warnings,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEvent returns an event with a fresh id
func NewEvent(kind Kind, accountID string, amount decimal.Decimal, at time.Time) *Event {
	return &Event{
		EventID:    uuid.New(),
		Kind:       kind,
		AccountID:  accountID,
		Amount:     amount,
		OccurredAt: at,
	}
}

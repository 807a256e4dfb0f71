package components

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	receiptHeader = "--------- RECEIPT ---------"
	receiptFooter = "---------------------------"

	// DefaultReceiptTimeFormat renders dates as yyyy-MM-dd HH:mm
	DefaultReceiptTimeFormat = "2006-01-02 15:04"
)

var suppliesUnavailable = machine.SupplyWarning{
	Supply:  machine.SupplyUnavailable,
	Message: "Warning: Receipt supplies could not be updated!",
}

// ReceiptRequest describes the operation a receipt is printed for
type ReceiptRequest struct {
	AccountID string
	Type      string
	Amount    decimal.Decimal
	Balance   decimal.Decimal
}

// Receipt is the rendered slip plus any supply warnings raised while printing it
type Receipt struct {
	Lines     []string                `json:"lines"`
	Warnings  []machine.SupplyWarning `json:"warnings,omitempty"`
	PrintedAt time.Time               `json:"printed_at"`
}

// Text joins the receipt lines
func (r *Receipt) Text() string {
	return strings.Join(r.Lines, "\n")
}

// ReceiptPrinter consumes receipt supplies in their own atomic unit. It runs after the
// money movement has committed and can never undo it.
type ReceiptPrinter struct {
	db            persistence.TxRunner
	resources     service.ResourceLedger
	outboxManager service.OutboxManager
	timeFormat    string
	logger        *slog.Logger
	now           func() time.Time
}

func NewReceiptPrinter(
	db persistence.TxRunner,
	resources service.ResourceLedger,
	outboxManager service.OutboxManager,
	timeFormat string,
	logger *slog.Logger,
) *ReceiptPrinter {
	if timeFormat == "" {
		timeFormat = DefaultReceiptTimeFormat
	}
	return &ReceiptPrinter{
		db:            db,
		resources:     resources,
		outboxManager: outboxManager,
		timeFormat:    timeFormat,
		logger:        logger,
		now:           time.Now,
	}
}

// PrintReceipt never fails: exhausted supplies and storage errors become warnings
func (p *ReceiptPrinter) PrintReceipt(ctx context.Context, req ReceiptRequest) *Receipt {
	log := logger.FromContext(ctx, p.logger).With("account_id", req.AccountID, "type", req.Type)
	now := p.now()

	var warnings []machine.SupplyWarning
	err := p.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		state, w, err := p.resources.ConsumeSupplies(ctx, tx)
		if err != nil {
			return err
		}
		warnings = w

		event := journal.NewEvent(journal.KindReceiptPrinted, req.AccountID, req.Amount, now.UTC())
		event.BalanceAfter = req.Balance
		event.MachineCash, event.Paper, event.Ink = state.Cash, state.Paper, state.Ink
		event.CorrelationID = logger.CorrelationID(ctx)
		for _, warning := range w {
			event.Warnings = append(event.Warnings, warning.Message)
		}
		return p.outboxManager.CreateOutboxEntry(ctx, tx, event)
	})
	if err != nil {
		log.Error("Failed to update receipt supplies", "error", err)
		warnings = []machine.SupplyWarning{suppliesUnavailable}
	}

	return &Receipt{
		Lines:     p.render(req, now),
		Warnings:  warnings,
		PrintedAt: now,
	}
}

func (p *ReceiptPrinter) render(req ReceiptRequest, at time.Time) []string {
	return []string{
		receiptHeader,
		fmt.Sprintf("Type   : %s", req.Type),
		fmt.Sprintf("Amount : %s", req.Amount.StringFixed(2)),
		fmt.Sprintf("Balance: %s", req.Balance.StringFixed(2)),
		fmt.Sprintf("Date   : %s", at.Format(p.timeFormat)),
		receiptFooter,
	}
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ResourceLedgerImpl tracks the cash and printer supplies held by the machine
type ResourceLedgerImpl struct {
	machineRepo machine.Repository
	logger      *slog.Logger
}

func NewResourceLedger(machineRepo machine.Repository, logger *slog.Logger) service.ResourceLedger {
	return &ResourceLedgerImpl{
		machineRepo: machineRepo,
		logger:      logger,
	}
}

// CurrentState returns a read-only snapshot outside of any transaction
func (l *ResourceLedgerImpl) CurrentState(ctx context.Context) (*machine.State, error) {
	state, err := l.machineRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine state: %w", err)
	}
	return state, nil
}

// LockState serializes cash and supply changes for the rest of tx
func (l *ResourceLedgerImpl) LockState(ctx context.Context, tx pgx.Tx) (*machine.State, error) {
	state, err := l.machineRepo.WithTx(tx).LockForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock machine state: %w", err)
	}
	return state, nil
}

// AddCash puts deposited notes into the machine
func (l *ResourceLedgerImpl) AddCash(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	cash, err := l.machineRepo.WithTx(tx).AdjustCash(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}
	logger.FromContext(ctx, l.logger).Debug("Machine cash increased", "amount", amount.String(), "cash", cash.String())
	return cash, nil
}

// DecrementCashForWithdrawal dispenses amount. A shortfall is machine.ErrInsufficientMachineCash
// and leaves cash unchanged.
func (l *ResourceLedgerImpl) DecrementCashForWithdrawal(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	cash, err := l.machineRepo.WithTx(tx).AdjustCash(ctx, amount.Neg())
	if err != nil {
		return decimal.Zero, err
	}
	logger.FromContext(ctx, l.logger).Debug("Machine cash dispensed", "amount", amount.String(), "cash", cash.String())
	return cash, nil
}

// ConsumeSupplies takes one unit of paper and one of ink for a receipt. An exhausted
// supply is skipped and reported as a warning; it never fails the call.
func (l *ResourceLedgerImpl) ConsumeSupplies(ctx context.Context, tx pgx.Tx) (*machine.State, []machine.SupplyWarning, error) {
	repo := l.machineRepo.WithTx(tx)

	state, err := repo.LockForUpdate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock machine state: %w", err)
	}

	usage := state.PlanReceipt()
	for _, w := range usage.Warnings {
		logger.FromContext(ctx, l.logger).Warn("Printer supply exhausted", "supply", w.Supply)
	}
	if usage.Paper == 0 && usage.Ink == 0 {
		return state, usage.Warnings, nil
	}

	updated, err := repo.ConsumeSupplies(ctx, usage.Paper, usage.Ink)
	if err != nil {
		return nil, usage.Warnings, err
	}
	return updated, usage.Warnings, nil
}

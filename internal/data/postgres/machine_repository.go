package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MachineRepository reads and updates the machine_state singleton (id = 1)
type MachineRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewMachineRepository(logger *slog.Logger, db *persistence.PostgresDB) machine.Repository {
	return &MachineRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *MachineRepository) WithTx(tx pgx.Tx) machine.Repository {
	return &MachineRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *MachineRepository) Get(ctx context.Context) (*machine.State, error) {
	query := `SELECT cash, paper, ink, firmware_version, updated_at FROM machine_state WHERE id = 1`
	return r.fetch(ctx, query, "read")
}

// LockForUpdate serializes cash and supply changes for the rest of the transaction
func (r *MachineRepository) LockForUpdate(ctx context.Context) (*machine.State, error) {
	query := `SELECT cash, paper, ink, firmware_version, updated_at FROM machine_state WHERE id = 1 FOR UPDATE`
	return r.fetch(ctx, query, "lock")
}

func (r *MachineRepository) fetch(ctx context.Context, query, op string) (*machine.State, error) {
	state, err := scanState(r.querier.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machine.ErrStateMissing
		}
		r.logger.Error("Failed to "+op+" machine state", "error", err)
		return nil, fmt.Errorf("failed to %s machine state: %w", op, err)
	}
	return state, nil
}

// AdjustCash adds delta to cash on hand. The cash CHECK constraint turns a shortfall
// into machine.ErrInsufficientMachineCash.
func (r *MachineRepository) AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE machine_state
		SET cash = cash + $1, updated_at = NOW()
		WHERE id = 1
		RETURNING cash
	`

	var cash decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, delta).Scan(&cash); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return decimal.Zero, machine.ErrStateMissing
		case isCheckViolation(err):
			return decimal.Zero, machine.ErrInsufficientMachineCash
		}
		r.logger.Error("Failed to adjust machine cash", "delta", delta.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust machine cash: %w", err)
	}
	return cash, nil
}

func (r *MachineRepository) ConsumeSupplies(ctx context.Context, paper, ink int) (*machine.State, error) {
	query := `
		UPDATE machine_state
		SET paper = paper - $1, ink = ink - $2, updated_at = NOW()
		WHERE id = 1
		RETURNING cash, paper, ink, firmware_version, updated_at
	`

	state, err := scanState(r.querier.QueryRow(ctx, query, paper, ink))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machine.ErrStateMissing
		}
		r.logger.Error("Failed to consume supplies", "paper", paper, "ink", ink, "error", err)
		return nil, fmt.Errorf("failed to consume supplies: %w", err)
	}
	return state, nil
}

func scanState(row pgx.Row) (*machine.State, error) {
	var s machine.State
	if err := row.Scan(&s.Cash, &s.Paper, &s.Ink, &s.FirmwareVersion, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

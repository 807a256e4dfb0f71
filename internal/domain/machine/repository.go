package machine

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository persists the machine-state singleton
type Repository interface {
	Get(ctx context.Context) (*State, error)
	LockForUpdate(ctx context.Context) (*State, error)

	// AdjustCash adds delta to cash on hand and returns the resulting amount
	AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error)

	// ConsumeSupplies subtracts the given units and returns the resulting state
	ConsumeSupplies(ctx context.Context, paper, ink int) (*State, error)
	WithTx(tx pgx.Tx) Repository
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
)

// RecordKeeperImpl appends transaction records inside the caller's transaction
type RecordKeeperImpl struct {
	transactionRepo transaction.Repository
	logger          *slog.Logger
}

func NewRecordKeeper(transactionRepo transaction.Repository, logger *slog.Logger) service.RecordKeeper {
	return &RecordKeeperImpl{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

func (k *RecordKeeperImpl) Append(ctx context.Context, tx pgx.Tx, records ...*transaction.Record) error {
	repo := k.transactionRepo.WithTx(tx)
	for _, rec := range records {
		if err := repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to append %s record for account %s: %w", rec.Type, rec.AccountID, err)
		}
	}
	return nil
}

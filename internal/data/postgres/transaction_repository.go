package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository appends to and reads the transactions audit log
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, rec *transaction.Record) error {
	query := `
		INSERT INTO transactions (id, account_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, rec.ID, rec.AccountID, rec.Amount, rec.Type, rec.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to write transaction record",
			"account_id", rec.AccountID,
			"type", string(rec.Type),
			"error", err,
		)
		return fmt.Errorf("failed to write transaction record: %w", err)
	}
	return nil
}

// ListByAccount returns the account's records, newest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Record, error) {
	query := `
		SELECT id, account_id, amount, type, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	records := make([]*transaction.Record, 0)
	for rows.Next() {
		var rec transaction.Record
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Amount, &rec.Type, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}
	return records, nil
}

func (r *TransactionRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Package postgres provides PostgreSQL implementations of the ledger store repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, card_number, pin, balance, failed_attempts, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // pool or pgx.Tx
	logger  *slog.Logger
}

func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// FindByCredentials looks up the account whose card number and PIN both match
func (r *AccountRepository) FindByCredentials(ctx context.Context, cardNumber, pin string) (*account.Account, bool, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE card_number = $1 AND pin = $2`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, cardNumber, pin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		r.logger.Error("Failed to look up account by credentials", "card", logger.MaskCard(cardNumber), "error", err)
		return nil, false, fmt.Errorf("failed to look up account by credentials: %w", err)
	}
	return acc, true, nil
}

// FindByCardNumber resolves an account by its unique card number
func (r *AccountRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*account.Account, bool, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE card_number = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, cardNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		r.logger.Error("Failed to look up account by card", "card", logger.MaskCard(cardNumber), "error", err)
		return nil, false, fmt.Errorf("failed to look up account by card: %w", err)
	}
	return acc, true, nil
}

// LockForUpdate obtains a row lock on the account and returns its current state.
// Only meaningful on a repository bound to a transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}
	return acc, nil
}

// AdjustBalance applies delta relative to the stored balance and returns the new balance.
// The balance CHECK constraint turns an overdraft into account.ErrNegativeBalance.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE account_id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return decimal.Zero, account.ErrAccountNotFound{AccountID: id}
		case isCheckViolation(err):
			return decimal.Zero, account.ErrNegativeBalance
		}
		r.logger.Error("Failed to adjust account balance", "account_id", id, "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust account balance: %w", err)
	}
	return balance, nil
}

// ResetFailedAttempts sets the failed-login counter back to zero
func (r *AccountRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	query := `UPDATE accounts SET failed_attempts = 0, updated_at = NOW() WHERE account_id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to reset failed login attempts", "account_id", id, "error", err)
		return fmt.Errorf("failed to reset failed login attempts: %w", err)
	}
	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.CardNumber,
		&acc.PIN,
		&acc.Balance,
		&acc.FailedAttempts,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

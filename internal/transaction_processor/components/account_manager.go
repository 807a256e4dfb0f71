package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountManagerImpl implements the AccountManager interface
type AccountManagerImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewAccountManager creates a new AccountManagerImpl
func NewAccountManager(accountRepo account.Repository, logger *slog.Logger) service.AccountManager {
	return &AccountManagerImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Lock takes the row lock on an account for the rest of tx
func (m *AccountManagerImpl) Lock(ctx context.Context, tx pgx.Tx, accountID string) (*account.Account, error) {
	locked, err := m.accountRepo.WithTx(tx).LockForUpdate(ctx, accountID)
	if err != nil {
		log := logger.FromContext(ctx, m.logger)
		if errors.Is(err, account.ErrAccountNotFound{}) {
			log.Warn("Account not found for lock", "account_id", accountID)
			return nil, err
		}
		log.Error("Failed to lock account", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return locked, nil
}

// LockTransferPair resolves the receiver by card, then locks both rows in account id
// order so opposite transfers between the same two accounts cannot deadlock.
// For a transfer to the sender's own card both results are the same account.
func (m *AccountManagerImpl) LockTransferPair(ctx context.Context, tx pgx.Tx, senderID, receiverCard string) (*account.Account, *account.Account, error) {
	log := logger.FromContext(ctx, m.logger)
	repo := m.accountRepo.WithTx(tx)

	target, found, err := repo.FindByCardNumber(ctx, receiverCard)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve transfer target: %w", err)
	}
	if !found {
		log.Warn("Transfer target not found", "target_card", logger.MaskCard(receiverCard))
		return nil, nil, service.ErrTargetNotFound
	}

	if target.ID == senderID {
		sender, err := m.Lock(ctx, tx, senderID)
		if err != nil {
			return nil, nil, err
		}
		return sender, sender, nil
	}

	firstID, secondID := senderID, target.ID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := m.Lock(ctx, tx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := m.Lock(ctx, tx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

// ApplyDelta adds delta to the stored balance and returns the committed-to-be balance
func (m *AccountManagerImpl) ApplyDelta(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	balance, err := m.accountRepo.WithTx(tx).AdjustBalance(ctx, accountID, delta)
	if err != nil {
		if errors.Is(err, account.ErrNegativeBalance) {
			return decimal.Zero, account.ErrInsufficientBalance
		}
		return decimal.Zero, err
	}
	logger.FromContext(ctx, m.logger).Debug("Account balance adjusted", "account_id", accountID, "delta", delta.String(), "balance", balance.String())
	return balance, nil
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
)

// Authenticator checks card and PIN against the ledger store
type Authenticator struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

func NewAuthenticator(accountRepo account.Repository, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Login returns the account matching both card and PIN and resets its failed-attempt
// counter. A mismatch returns account.ErrAuthentication without touching any row.
func (a *Authenticator) Login(ctx context.Context, cardNumber, pin string) (*account.Account, error) {
	log := logger.FromContext(ctx, a.logger).With("card", logger.MaskCard(cardNumber))

	acc, found, err := a.accountRepo.FindByCredentials(ctx, cardNumber, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate card: %w", err)
	}
	if !found {
		log.Warn("Login rejected")
		return nil, account.ErrAuthentication
	}

	if err := a.accountRepo.ResetFailedAttempts(ctx, acc.ID); err != nil {
		return nil, fmt.Errorf("failed to reset failed attempts: %w", err)
	}
	acc.FailedAttempts = 0

	log.Info("Login succeeded", "account_id", acc.ID)
	return acc, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/data/redis"
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
)

// ErrInvalidSession is returned for missing, unknown or expired session tokens
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionServiceImpl implements the SessionService interface
type SessionServiceImpl struct {
	authenticator Authenticator
	sessions      SessionStore
	logger        *slog.Logger
}

func NewSessionService(logger *slog.Logger, authenticator Authenticator, sessions SessionStore) SessionService {
	return &SessionServiceImpl{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

func (s *SessionServiceImpl) Login(ctx context.Context, cardNumber, pin string) (*account.Account, string, error) {
	acc, err := s.authenticator.Login(ctx, cardNumber, pin)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, acc.ID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to open session", "account_id", acc.ID, "error", err)
		return nil, "", fmt.Errorf("failed to open session: %w", err)
	}
	return acc, token, nil
}

func (s *SessionServiceImpl) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *SessionServiceImpl) Resolve(ctx context.Context, token string) (string, error) {
	accountID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return "", ErrInvalidSession
		}
		return "", err
	}
	return accountID, nil
}

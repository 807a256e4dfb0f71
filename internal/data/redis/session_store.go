// Package redis keeps ATM card sessions in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/config"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "atm:session:"

// ErrSessionNotFound is returned for unknown or expired tokens
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps an opaque session token to the account that logged in
type SessionStore struct {
	client    goredis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// NewClient opens a client and pings it once
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewSessionStore(client goredis.UniversalClient, keyPrefix string, ttl time.Duration, logger *slog.Logger) *SessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Create starts a session for accountID and returns its token
func (s *SessionStore) Create(ctx context.Context, accountID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), accountID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	s.logger.Debug("Session created", "account_id", accountID, "ttl", s.ttl.String())
	return token, nil
}

// Get resolves a token to its account id and slides the expiry forward
func (s *SessionStore) Get(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}
	accountID, err := s.client.GetEx(ctx, s.key(token), s.ttl).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return accountID, nil
}

// Delete ends a session. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(token string) string {
	return s.keyPrefix + token
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry queues one outbox message per event within tx
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, events ...*journal.Event) error {
	log := logger.FromContext(ctx, m.logger)
	outboxRepoTx := m.outboxRepo.WithTx(tx)

	for _, event := range events {
		outboxMessage, err := outbox.NewMessage(event)
		if err != nil {
			log.Error("Failed to create new outbox message (marshal payload)", "event_id", event.EventID.String(), "error", err)
			return fmt.Errorf("failed to create outbox message payload for event %s: %w", event.EventID.String(), err)
		}

		if err = outboxRepoTx.Create(ctx, outboxMessage); err != nil {
			log.Error("Failed to create outbox message",
				"event_id", event.EventID.String(),
				"account_id", event.AccountID,
				"error", err,
			)
			return fmt.Errorf("failed to create outbox message for event %s: %w", event.EventID.String(), err)
		}
		log.Debug("Outbox message created", "event_id", event.EventID.String(), "kind", event.Kind, "outbox_id", outboxMessage.ID)
	}
	return nil
}

package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/platform/messaging/producers"
)

// EventPublisher moves one outbox message onto the events topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher implements EventPublisher
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.EventPublisher
	logger     *slog.Logger
}

func NewKafkaEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.EventPublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent sends the stored payload as is, keyed by account so an account's events
// stay ordered, then marks the message PROCESSED. A payload that does not decode can never
// be published and is marked FAILED_TO_PUBLISH straight away.
func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to decode journal event from outbox payload", "outbox_id", message.ID, "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	headers := map[string]string{
		"event-id":   event.EventID.String(),
		"event-kind": string(event.Kind),
	}
	if event.CorrelationID != "" {
		headers["correlation-id"] = event.CorrelationID
	}

	if err := p.producer.Publish(ctx, message.AccountID, message.Payload, headers); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "outbox_id", message.ID, "event_id", event.EventID.String(), "error", err)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", event.EventID, message.ID, err)
	}

	logger.Debug("Outbox message marked as PROCESSED", "outbox_id", message.ID, "event_id", event.EventID.String(), "kind", event.Kind)
	return nil
}

// Package consumer archives journal events read from Kafka into MongoDB.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/messaging/producers"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// JournalEventHandler handles journal events published by the ATM service
type JournalEventHandler struct {
	journalRepo journal.Repository
	producer    producers.DeadLetterPublisher
	logger      *slog.Logger
}

func NewJournalEventHandler(
	logger *slog.Logger,
	journalRepo journal.Repository,
	producer producers.DeadLetterPublisher,
) *JournalEventHandler {
	return &JournalEventHandler{
		journalRepo: journalRepo,
		producer:    producer,
		logger:      logger,
	}
}

// HandleMessage archives one event. Redelivered events are acknowledged without a second
// insert; undecodable messages go to the DLQ and are acknowledged once parked there.
func (h *JournalEventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event journal.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return h.deadLetter(ctx, msg, fmt.Errorf("failed to unmarshal journal event: %w", err))
	}
	if event.EventID == uuid.Nil || event.Kind == "" {
		return h.deadLetter(ctx, msg, errors.New("journal event has no id or kind"))
	}

	log := h.logger
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
		log = logger.FromContext(ctx, h.logger)
	}
	log = log.With("event_id", event.EventID.String(), "kind", event.Kind, "account_id", event.AccountID)

	if err := h.journalRepo.Create(ctx, &event); err != nil {
		if errors.Is(err, journal.ErrDuplicateEvent{}) {
			log.Info("Journal event already archived, skipping")
			return nil
		}
		log.Error("Failed to archive journal event", "error", err)
		return fmt.Errorf("archiving journal event %s failed: %w", event.EventID, err)
	}

	log.Info("Journal event archived", "partition", msg.Partition, "offset", msg.Offset)
	return nil
}

func (h *JournalEventHandler) deadLetter(ctx context.Context, msg kafka.Message, cause error) error {
	h.logger.Error("Unprocessable journal message",
		"error", cause,
		"message_key", string(msg.Key),
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	if h.producer == nil {
		return cause
	}

	letter := producers.DeadLetter{
		Key:         string(msg.Key),
		Value:       msg.Value,
		Reason:      cause.Error(),
		SourceTopic: msg.Topic,
		Partition:   msg.Partition,
		Offset:      msg.Offset,
	}
	if err := h.producer.PublishToDLQ(ctx, letter); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(msg.Key),
		)
		return cause
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(msg.Key), "reason", letter.Reason)
	return nil
}

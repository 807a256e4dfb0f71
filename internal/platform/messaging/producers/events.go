package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventProducer writes ATM journal events to Kafka. Writes are synchronous so the
// outbox poller only marks a message processed once the broker acknowledged it.
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	if err := ensureTopic(cfg, cfg.EventsTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return NewEventProducerWithWriter(logger, writer, cfg.EventsTopic), nil
}

// NewEventProducerWithWriter builds a producer around an existing writer
func NewEventProducerWithWriter(logger *slog.Logger, writer KafkaWriter, topic string) *EventProducer {
	return &EventProducer{logger: logger, writer: writer, topic: topic}
}

// Publish sends payload keyed by key. The key keeps one account's events on one partition.
func (p *EventProducer) Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event", "topic", p.topic, "key", key)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

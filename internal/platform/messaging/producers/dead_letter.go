package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/atm-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ErrDLQDisabled is returned by a nil DLQProducer
var ErrDLQDisabled = errors.New("dead letter queue is not configured")

// DeadLetter describes a message that could not be processed
type DeadLetter struct {
	Key         string
	Value       []byte
	Reason      string
	SourceTopic string
	Partition   int
	Offset      int64
}

type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
}

// NewDLQProducer returns a nil producer when cfg.DLQTopic is empty
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, dead letters will be dropped")
		return nil, nil
	}

	if err := ensureTopic(cfg, cfg.DLQTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return NewDLQProducerWithWriter(logger, writer, cfg.DLQTopic), nil
}

func NewDLQProducerWithWriter(logger *slog.Logger, writer KafkaWriter, topic string) *DLQProducer {
	return &DLQProducer{logger: logger, writer: writer, dlqTopic: topic}
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, letter DeadLetter) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	payload := struct {
		OriginalKey   string `json:"original_key"`
		OriginalValue string `json:"original_value"`
		SourceTopic   string `json:"source_topic,omitempty"`
		Partition     int    `json:"partition"`
		Offset        int64  `json:"offset"`
		DLQReason     string `json:"dlq_reason"`
		Timestamp     string `json:"timestamp"`
	}{
		OriginalKey:   letter.Key,
		OriginalValue: string(letter.Value),
		SourceTopic:   letter.SourceTopic,
		Partition:     letter.Partition,
		Offset:        letter.Offset,
		DLQReason:     letter.Reason,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(letter.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "dlq-reason", Value: []byte(letter.Reason)},
			{Key: "source-offset", Value: []byte(strconv.FormatInt(letter.Offset, 10))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message to DLQ", "topic", p.dlqTopic, "key", letter.Key, "error", err)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Info("Published message to DLQ", "topic", p.dlqTopic, "key", letter.Key, "reason", letter.Reason)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ Kafka producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}

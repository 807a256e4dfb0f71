package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one fetched message. A nil error commits its offset;
// an error makes the consumer retry the same message before fetching the next one.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader is the part of *kafka.Reader the consumer needs
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using a Kafka consumer group
type KafkaConsumer struct {
	reader     MessageReader
	logger     *slog.Logger
	topic      string
	groupID    string
	fetchDelay time.Duration
	retryDelay time.Duration
	maxBackoff time.Duration
	done       chan struct{}
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string) *KafkaConsumer {
	startOffset := cfg.StartOffset
	if startOffset == 0 {
		startOffset = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	return NewKafkaConsumerWithReader(logger, reader, topic, cfg.ConsumerGroup)
}

// NewKafkaConsumerWithReader builds a consumer around an existing reader
func NewKafkaConsumerWithReader(logger *slog.Logger, reader MessageReader, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		logger:     logger,
		topic:      topic,
		groupID:    groupID,
		fetchDelay: time.Second,
		retryDelay: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
		done:       make(chan struct{}),
	}
}

// Subscribe starts consuming in the background until ctx is canceled.
// Done is closed once the loop has returned.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	go func() {
		defer close(c.done)
		c.consume(ctx, handler)
	}()
	return nil
}

// Done reports when the consume loop started by Subscribe has stopped
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		if ctx.Err() != nil {
			c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "group_id", c.groupID, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchDelay):
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if !c.handleUntilDone(ctx, handler, msg) {
			c.logger.Info("Context canceled before message was handled, offset not committed",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message after successful processing",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}
		c.logger.Debug("Message committed successfully", "topic", msg.Topic, "offset", msg.Offset)
	}
}

// handleUntilDone runs handler on msg until it succeeds, backing off between attempts.
// Offsets are committed per partition, so moving on would commit past msg.
// It returns false only when ctx ends first.
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return true
		}
		c.logger.Error("Failed to process message, retrying",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"retry_in", delay.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
		if c.maxBackoff > 0 && delay > c.maxBackoff {
			delay = c.maxBackoff
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes pre-encoded event payloads to the events topic
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, letter DeadLetter) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// topicAdmin is the part of *kafka.Conn used to make sure a topic exists
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

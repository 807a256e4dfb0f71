package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// ensureTopic dials the broker and creates topic when it does not exist yet
func ensureTopic(cfg *config.KafkaConfig, topic string, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, topicReadBackoff, log)
}

// createKafkaTopicIfNotExists creates the topic if no partitions can be read for it.
// Partition reads are retried since a fresh broker may not answer right away.
func createKafkaTopicIfNotExists(admin topicAdmin, topicName string, numPartitions, replicationFactor int, backoff time.Duration, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	log.Info("Checking if Kafka topic exists", "topic", topicName)
	for i := 0; i < topicReadAttempts; i++ {
		partitions, err = admin.ReadPartitions(topicName)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read partitions, retrying", "topic", topicName, "attempt", i+1, "error", err)
		time.Sleep(backoff)
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}

	log.Info("Creating Kafka topic", "topic", topicName,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor,
		"last_read_error", err)
	if creationErr := admin.CreateTopics(topicConfig); creationErr != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, creationErr)
	}
	log.Info("Successfully created Kafka topic", "topic", topicName)
	return nil
}

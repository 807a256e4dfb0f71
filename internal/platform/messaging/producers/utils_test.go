package producers

import (
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTopicAdmin struct {
	mock.Mock
}

func (m *mockTopicAdmin) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	args := m.Called(topics)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kafka.Partition), args.Error(1)
}

func (m *mockTopicAdmin) CreateTopics(topics ...kafka.TopicConfig) error {
	args := m.Called(topics)
	return args.Error(0)
}

func TestCreateKafkaTopicIfNotExists(t *testing.T) {
	t.Run("ExistingTopic", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		admin.On("ReadPartitions", []string{"atm_events"}).
			Return([]kafka.Partition{{Topic: "atm_events", ID: 0}}, nil).Once()

		err := createKafkaTopicIfNotExists(admin, "atm_events", 3, 1, 0, testLogger())
		assert.NoError(t, err)
		admin.AssertNotCalled(t, "CreateTopics", mock.Anything)
	})

	t.Run("MissingTopicIsCreatedWithDefaults", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		admin.On("ReadPartitions", []string{"atm_events"}).
			Return(nil, errors.New("unknown topic")).Times(topicReadAttempts)
		admin.On("CreateTopics", []kafka.TopicConfig{{Topic: "atm_events", NumPartitions: 1, ReplicationFactor: 1}}).
			Return(nil).Once()

		err := createKafkaTopicIfNotExists(admin, "atm_events", 0, 0, 0, testLogger())
		assert.NoError(t, err)
		admin.AssertExpectations(t)
	})

	t.Run("CreationFailure", func(t *testing.T) {
		admin := new(mockTopicAdmin)
		admin.On("ReadPartitions", mock.Anything).Return([]kafka.Partition{}, nil)
		admin.On("CreateTopics", mock.Anything).Return(errors.New("not authorized")).Once()

		err := createKafkaTopicIfNotExists(admin, "atm_events_dlq", 1, 1, 0, testLogger())
		assert.ErrorContains(t, err, "failed to create kafka topic atm_events_dlq")
	})
}

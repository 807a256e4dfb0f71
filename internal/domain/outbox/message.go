package outbox

import (
	"encoding/json"
	"time"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Message holds a journal event written in the same transaction as the change it describes
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	AccountID     string              `json:"account_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *journal.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   event.EventID,
		AccountID: event.AccountID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

// Exhausted reports whether the message reached maxAttempts publish attempts
func (m *Message) Exhausted(maxAttempts int) bool {
	return m.Attempts >= maxAttempts
}

// Event decodes the journal event carried in the payload
func (m *Message) Event() (*journal.Event, error) {
	var event journal.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (m *Message) touch() {
	now := time.Now()
	m.LastAttemptAt = &now
}

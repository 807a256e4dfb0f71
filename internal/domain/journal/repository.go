package journal

import (
	"context"

	"github.com/google/uuid"
)

// Repository archives journal events
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*Event, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

// ErrEventNotFound indicates a missing journal event
type ErrEventNotFound struct {
	EventID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "journal event not found: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrEventNotFound
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}

// ErrDuplicateEvent indicates the event id was already archived
type ErrDuplicateEvent struct {
	EventID uuid.UUID
}

func (e ErrDuplicateEvent) Error() string {
	return "duplicate journal event: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEvent
func (e ErrDuplicateEvent) Is(target error) bool {
	t, ok := target.(ErrDuplicateEvent)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}

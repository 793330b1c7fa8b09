package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact published after a state change
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// PartitionKey groups events that must be delivered in order,
	// e.g. all events of one sales channel.
	PartitionKey() string
}

// EventHeader holds the fields shared by every event. Embed it by value.
type EventHeader struct {
	ID   uuid.UUID `json:"event_id"`
	Type string    `json:"event_type"`
	At   time.Time `json:"occurred_at"`
	Key  string    `json:"partition_key"`
}

// NewEventHeader stamps a new event of eventType for the entity identified by key
func NewEventHeader(eventType string, key uuid.UUID) EventHeader {
	return EventHeader{
		ID:   uuid.New(),
		Type: eventType,
		At:   time.Now().UTC(),
		Key:  key.String(),
	}
}

func (h EventHeader) EventID() uuid.UUID    { return h.ID }
func (h EventHeader) EventType() string     { return h.Type }
func (h EventHeader) OccurredAt() time.Time { return h.At }
func (h EventHeader) PartitionKey() string  { return h.Key }

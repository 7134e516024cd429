// Package bus defines the message bus port used to deliver integration
// events to external consumers, together with in-memory and Kafka backed
// implementations.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is an integration event that can be delivered over a message bus.
// EventType returns a stable name used for routing and for re-materializing
// persisted events.
type Event interface {
	EventType() string
}

// PartitionKeyer is an optional interface for events that must be routed
// to a specific partition. Events without it are partitioned by a random key.
type PartitionKeyer interface {
	PartitionKey() string
}

// MessageBus delivers events to external consumers.
//
// Delivery is at-least-once: callers retrying after an ambiguous failure
// may cause duplicates, so consumers are expected to deduplicate by event ID.
type MessageBus interface {
	PublishEvent(ctx context.Context, event Event) error
	Close() error
}

// BaseEvent carries the fields shared by all integration events.
// Domain event types embed it and implement EventType themselves.
type BaseEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBaseEvent returns a BaseEvent with a fresh identifier and the
// current timestamp.
func NewBaseEvent() BaseEvent {
	return BaseEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	}
}

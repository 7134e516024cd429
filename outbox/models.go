package outbox

import (
	"encoding/json"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/bus"
)

// OutboxEvent is one durable event row awaiting publication.
//
// Lifecycle: a row is created unpublished, transitions to published
// exactly once (PublishedAt set, never unset), or accumulates failures
// (RetryCount only grows, PublishedAt stays null) until a later cycle
// succeeds. Published rows are removed only by retention cleanup.
type OutboxEvent struct {
	bun.BaseModel `bun:"table:event_outbox,alias:eo"`

	ID            string     `bun:"id,pk"`
	EventType     string     `bun:"event_type,notnull"`
	EventData     []byte     `bun:"event_data,notnull"`
	CreatedAt     time.Time  `bun:"created_at,notnull"`
	PublishedAt   *time.Time `bun:"published_at,nullzero"`
	RetryCount    int        `bun:"retry_count,notnull,default:0"`
	ErrorMessage  string     `bun:"error_message,nullzero"`
	CorrelationID string     `bun:"correlation_id,nullzero"`
}

// NewOutboxEvent serializes a bus event into a pending outbox row.
func NewOutboxEvent(event bus.Event, correlationID string) (*OutboxEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{
			"event_type": event.EventType(),
		}))
	}

	return &OutboxEvent{
		ID:            uuid.NewString(),
		EventType:     event.EventType(),
		EventData:     data,
		CreatedAt:     time.Now().UTC(),
		CorrelationID: correlationID,
	}, nil
}

// Published reports whether the row reached its terminal state.
func (e *OutboxEvent) Published() bool { return e.PublishedAt != nil }

// Failed reports whether at least one publish attempt failed without
// the row being published since.
func (e *OutboxEvent) Failed() bool { return e.RetryCount > 0 && e.PublishedAt == nil }

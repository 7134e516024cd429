package bus

import (
	"context"
	"sync"

	"github.com/code19m/errx"
)

var errBusClosed = errx.New("message bus is closed")

// MemoryBus is an in-process MessageBus. It records every published event
// and fans it out to subscribers synchronously. Intended for tests and
// single-process setups.
type MemoryBus struct {
	mu          sync.Mutex
	published   []Event
	subscribers map[string][]func(ctx context.Context, event Event) error
	closed      bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subscribers: make(map[string][]func(ctx context.Context, event Event) error),
	}
}

// Subscribe registers a handler for the given event type.
func (b *MemoryBus) Subscribe(eventType string, handler func(ctx context.Context, event Event) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// PublishEvent records the event and invokes subscribers in registration
// order. The first subscriber error aborts the fan-out and is returned.
func (b *MemoryBus) PublishEvent(ctx context.Context, event Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errBusClosed
	}
	b.published = append(b.published, event)
	handlers := b.subscribers[event.EventType()]
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Published returns a copy of every event published so far.
func (b *MemoryBus) Published() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.published))
	copy(out, b.published)
	return out
}

// Close marks the bus closed. Further publishes fail.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/bus"
	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
	"github.com/deeplines/buildingblocks/uow"
)

// EventFactory returns a pointer to a zero value of the event type so
// persisted payloads can be deserialized into it.
type EventFactory func() bus.Event

// Publisher is the background loop draining the outbox. Each cycle
// opens its own unit of work, reads a FIFO batch of unpublished rows,
// re-materializes each event through the registered factory and
// publishes it to the message bus. Rows are marked published on
// success, or failed on any error, and failed rows are simply retried
// on later cycles; the publisher carries no backoff of its own.
type Publisher struct {
	cfg      PublisherConfig
	mediator *cqrs.Mediator
	bus      bus.MessageBus
	db       *bun.DB
	logger   logger.Logger

	mu       sync.RWMutex
	registry map[string]EventFactory

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewPublisher creates a publisher. Zero config fields fall back to
// their defaults.
func NewPublisher(
	cfg PublisherConfig,
	m *cqrs.Mediator,
	msgBus bus.MessageBus,
	db *bun.DB,
	log logger.Logger,
) (*Publisher, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, errx.Wrap(err)
	}

	return &Publisher{
		cfg:       cfg,
		mediator:  m,
		bus:       msgBus,
		db:        db,
		logger:    log.Named("outbox.publisher"),
		registry:  make(map[string]EventFactory),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// RegisterEventType binds a persisted event type name to its factory.
// Rows with an unregistered type are marked failed, never published.
func (p *Publisher) RegisterEventType(eventType string, factory EventFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry[eventType] = factory
}

// Start runs the polling loop until Stop is called or ctx is
// cancelled. It blocks; run it on its own goroutine.
func (p *Publisher) Start(ctx context.Context) error {
	defer close(p.stoppedCh)

	p.logger.With("polling_interval", p.cfg.PollingInterval.String()).Info("outbox publisher started")

	ticker := time.NewTicker(p.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		p.cycle(ctx)

		select {
		case <-p.stopCh:
			p.logger.Info("outbox publisher stopped")
			return nil
		case <-ctx.Done():
			p.logger.Info("outbox publisher context cancelled")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop signals the loop to exit after its current cycle and waits for
// it, bounded by the configured stop timeout.
func (p *Publisher) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	select {
	case <-p.stoppedCh:
		return nil
	case <-time.After(p.cfg.StopTimeout):
		return errx.New("outbox publisher did not stop in time")
	}
}

// cycle drains one batch. Every row failure is contained: the loop
// itself never crashes on bad data.
func (p *Publisher) cycle(ctx context.Context) {
	u := uow.New(p.db)

	qry := &GetUnpublishedEventsQuery{Limit: p.cfg.BatchSize}
	qry.UnitOfWork = u

	events, err := cqrs.Query[[]*OutboxEvent](ctx, p.mediator, qry)
	if err != nil {
		p.logger.Errorx(err)
		return
	}

	for _, row := range events {
		p.process(ctx, u, row)
	}
}

func (p *Publisher) process(ctx context.Context, u uow.UnitOfWork, row *OutboxEvent) {
	factory := p.factory(row.EventType)
	if factory == nil {
		p.markFailed(ctx, u, row, fmt.Sprintf("no event factory registered for type %q", row.EventType))
		return
	}

	event := factory()
	if err := json.Unmarshal(row.EventData, event); err != nil {
		p.markFailed(ctx, u, row, fmt.Sprintf("cannot deserialize event: %v", err))
		return
	}

	if err := p.bus.PublishEvent(ctx, event); err != nil {
		p.markFailed(ctx, u, row, err.Error())
		return
	}

	cmd := &MarkEventAsPublishedCommand{EventID: row.ID}
	cmd.UnitOfWork = u
	if err := p.mediator.SendCommand(ctx, cmd); err != nil {
		p.logger.With("event_id", row.ID).Errorx(err)
	}
}

func (p *Publisher) markFailed(ctx context.Context, u uow.UnitOfWork, row *OutboxEvent, message string) {
	p.logger.
		With("event_id", row.ID).
		With("event_type", row.EventType).
		With("error_message", message).
		Warn("outbox event publish failed")

	cmd := &MarkEventAsFailedCommand{EventID: row.ID, ErrorMessage: message}
	cmd.UnitOfWork = u
	if err := p.mediator.SendCommand(ctx, cmd); err != nil {
		p.logger.With("event_id", row.ID).Errorx(err)
	}
}

func (p *Publisher) factory(eventType string) EventFactory {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.registry[eventType]
}

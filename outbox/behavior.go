package outbox

import (
	"context"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

// Behavior persists the domain events a command collected, after the
// handler succeeded and into the same unit of work. Compose it inside
// the transaction behavior so the event rows commit atomically with
// the business change.
//
// Persistence failures are logged and swallowed: a successful business
// result is never turned into a failure by an eventing problem.
type Behavior struct {
	mediator *cqrs.Mediator
	logger   logger.Logger
}

// NewBehavior creates the outbox behavior.
func NewBehavior(m *cqrs.Mediator, log logger.Logger) *Behavior {
	return &Behavior{
		mediator: m,
		logger:   log.Named("outbox.behavior"),
	}
}

func (b *Behavior) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	result, err := next(ctx)
	if err != nil {
		return nil, err
	}

	rc := req.Context()
	if rc == nil || len(rc.DomainEvents) == 0 || req.Kind() == cqrs.KindQuery {
		return result, nil
	}

	rows := make([]*OutboxEvent, 0, len(rc.DomainEvents))
	for _, event := range rc.DomainEvents {
		row, rowErr := NewOutboxEvent(event, rc.CorrelationID.String())
		if rowErr != nil {
			b.logger.WithContext(ctx).
				With("request_name", req.Name()).
				With("event_type", event.EventType()).
				Errorx(rowErr)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return result, nil
	}

	cmd := &SaveEventsToOutboxCommand{Events: rows}
	cmd.CorrelationID = rc.CorrelationID
	cmd.UnitOfWork = rc.UnitOfWork

	if saveErr := b.mediator.SendCommand(ctx, cmd); saveErr != nil {
		b.logger.WithContext(ctx).
			With("request_name", req.Name()).
			With("event_count", len(rows)).
			Errorx(saveErr)
	}

	return result, nil
}

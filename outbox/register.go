package outbox

import (
	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/cqrs"
)

// RegisterHandlers binds every outbox command and query to the mediator.
// The db is the fallback connection for requests without a unit of work.
func RegisterHandlers(m *cqrs.Mediator, db *bun.DB) error {
	s := &store{db: db}

	if err := cqrs.RegisterCommandHandler(m,
		cqrs.CommandHandlerFunc[*SaveEventToOutboxCommand](s.saveEvent)); err != nil {
		return err
	}
	if err := cqrs.RegisterCommandHandler(m,
		cqrs.CommandHandlerFunc[*SaveEventsToOutboxCommand](s.saveEvents)); err != nil {
		return err
	}
	if err := cqrs.RegisterCommandHandler(m,
		cqrs.CommandHandlerFunc[*MarkEventAsPublishedCommand](s.markPublished)); err != nil {
		return err
	}
	if err := cqrs.RegisterCommandHandler(m,
		cqrs.CommandHandlerFunc[*MarkEventAsFailedCommand](s.markFailed)); err != nil {
		return err
	}
	if err := cqrs.RegisterCommandHandler(m,
		cqrs.CommandHandlerFunc[*CleanupPublishedEventsCommand](s.cleanup)); err != nil {
		return err
	}
	if err := cqrs.RegisterQueryHandler(m,
		cqrs.QueryHandlerFunc[*GetUnpublishedEventsQuery, []*OutboxEvent](s.getUnpublished)); err != nil {
		return err
	}
	if err := cqrs.RegisterQueryHandler(m,
		cqrs.QueryHandlerFunc[*GetFailedEventsQuery, []*OutboxEvent](s.getFailed)); err != nil {
		return err
	}
	return cqrs.RegisterQueryHandler(m,
		cqrs.QueryHandlerFunc[*GetEventsByCorrelationIDQuery, []*OutboxEvent](s.getByCorrelationID))
}

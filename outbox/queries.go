package outbox

import (
	"context"

	"github.com/code19m/errx"

	"github.com/deeplines/buildingblocks/cqrs"
)

// GetUnpublishedEventsQuery returns pending rows in FIFO order,
// bounded by Limit. Published rows are never returned.
type GetUnpublishedEventsQuery struct {
	cqrs.RequestContext

	Limit int `validate:"required,gt=0"`
}

// GetFailedEventsQuery returns unpublished rows whose retry count has
// reached MaxRetries, for external dead-letter policies.
type GetFailedEventsQuery struct {
	cqrs.RequestContext

	MaxRetries int `validate:"required,gt=0"`
	Limit      int
}

// GetEventsByCorrelationIDQuery returns every row produced under one
// correlation id, published or not.
type GetEventsByCorrelationIDQuery struct {
	cqrs.RequestContext

	CorrelationID string `validate:"required"`
}

func (s *store) getUnpublished(ctx context.Context, qry *GetUnpublishedEventsQuery) ([]*OutboxEvent, error) {
	var events []*OutboxEvent
	err := s.idb(&qry.RequestContext).
		NewSelect().
		Model(&events).
		Where("published_at IS NULL").
		OrderExpr("created_at ASC").
		Limit(qry.Limit).
		Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return events, nil
}

func (s *store) getFailed(ctx context.Context, qry *GetFailedEventsQuery) ([]*OutboxEvent, error) {
	var events []*OutboxEvent
	q := s.idb(&qry.RequestContext).
		NewSelect().
		Model(&events).
		Where("published_at IS NULL").
		Where("retry_count >= ?", qry.MaxRetries).
		OrderExpr("created_at ASC")
	if qry.Limit > 0 {
		q = q.Limit(qry.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err)
	}
	return events, nil
}

func (s *store) getByCorrelationID(ctx context.Context, qry *GetEventsByCorrelationIDQuery) ([]*OutboxEvent, error) {
	var events []*OutboxEvent
	err := s.idb(&qry.RequestContext).
		NewSelect().
		Model(&events).
		Where("correlation_id = ?", qry.CorrelationID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return events, nil
}

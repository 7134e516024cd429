package outbox

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/cqrs"
)

// SaveEventToOutboxCommand appends one pending row. It never commits;
// the enclosing transaction behavior or caller owns the commit.
type SaveEventToOutboxCommand struct {
	cqrs.RequestContext

	Event *OutboxEvent `validate:"required"`
}

// SaveEventsToOutboxCommand appends many pending rows in one round trip.
type SaveEventsToOutboxCommand struct {
	cqrs.RequestContext

	Events []*OutboxEvent `validate:"required,min=1"`
}

// MarkEventAsPublishedCommand stamps a row published. The stamp is
// applied at most once; a row already published is left untouched.
type MarkEventAsPublishedCommand struct {
	cqrs.RequestContext

	EventID string `validate:"required"`
}

// MarkEventAsFailedCommand records a failed publish attempt.
type MarkEventAsFailedCommand struct {
	cqrs.RequestContext

	EventID      string `validate:"required"`
	ErrorMessage string `validate:"required"`
}

// CleanupPublishedEventsCommand deletes published rows older than the
// retention cutoff. Unpublished rows are never deleted.
type CleanupPublishedEventsCommand struct {
	cqrs.RequestContext

	OlderThanDays int `validate:"required,gt=0"`
}

// store owns the SQL for outbox commands and queries. Writes run on
// the request's unit of work when one is attached, so they share the
// caller's transaction; otherwise they run on the bare connection.
type store struct {
	db *bun.DB
}

func (s *store) idb(rc *cqrs.RequestContext) bun.IDB {
	if rc != nil && rc.UnitOfWork != nil {
		return rc.UnitOfWork.DB()
	}
	return s.db
}

func (s *store) saveEvent(ctx context.Context, cmd *SaveEventToOutboxCommand) error {
	_, err := s.idb(&cmd.RequestContext).
		NewInsert().
		Model(cmd.Event).
		Exec(ctx)
	return errx.Wrap(err)
}

func (s *store) saveEvents(ctx context.Context, cmd *SaveEventsToOutboxCommand) error {
	_, err := s.idb(&cmd.RequestContext).
		NewInsert().
		Model(&cmd.Events).
		Exec(ctx)
	return errx.Wrap(err)
}

func (s *store) markPublished(ctx context.Context, cmd *MarkEventAsPublishedCommand) error {
	now := time.Now().UTC()
	_, err := s.idb(&cmd.RequestContext).
		NewUpdate().
		Model((*OutboxEvent)(nil)).
		Set("published_at = ?", now).
		Where("id = ?", cmd.EventID).
		Where("published_at IS NULL").
		Exec(ctx)
	return errx.Wrap(err)
}

func (s *store) markFailed(ctx context.Context, cmd *MarkEventAsFailedCommand) error {
	_, err := s.idb(&cmd.RequestContext).
		NewUpdate().
		Model((*OutboxEvent)(nil)).
		Set("retry_count = retry_count + 1").
		Set("error_message = ?", cmd.ErrorMessage).
		Where("id = ?", cmd.EventID).
		Where("published_at IS NULL").
		Exec(ctx)
	return errx.Wrap(err)
}

func (s *store) cleanup(ctx context.Context, cmd *CleanupPublishedEventsCommand) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -cmd.OlderThanDays)
	_, err := s.idb(&cmd.RequestContext).
		NewDelete().
		Model((*OutboxEvent)(nil)).
		Where("published_at IS NOT NULL").
		Where("published_at < ?", cutoff).
		Exec(ctx)
	return errx.Wrap(err)
}

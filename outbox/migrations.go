package outbox

import (
	"context"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

// Migrate creates the outbox table and its drain index. Safe to call
// on every startup.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*OutboxEvent)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	// The publisher reads unpublished rows in FIFO order.
	_, err = db.NewCreateIndex().
		Model((*OutboxEvent)(nil)).
		Index("idx_event_outbox_created_at").
		Column("created_at").
		IfNotExists().
		Exec(ctx)
	return errx.Wrap(err)
}

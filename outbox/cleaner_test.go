package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/logger"
	"github.com/deeplines/buildingblocks/outbox"
)

func TestCleaner_RunDeletesExpiredPublishedRows(t *testing.T) {
	db := newTestDB(t)
	m := newOutboxMediator(t, db)
	ctx := context.Background()

	expired := mustRow(t, gameFinished{GameID: "g-1"}, "", time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, m.SendCommand(ctx, &outbox.SaveEventToOutboxCommand{Event: expired}))

	stale := time.Now().UTC().AddDate(0, 0, -30)
	_, err := db.NewUpdate().
		Model((*outbox.OutboxEvent)(nil)).
		Set("published_at = ?", stale).
		Where("id = ?", expired.ID).
		Exec(ctx)
	require.NoError(t, err)

	c, err := outbox.NewCleaner(outbox.CleanerConfig{RetentionDays: 7}, m, db, logger.NewNop())
	require.NoError(t, err)
	c.Run()

	assert.Empty(t, allRows(t, db))
}

package uow_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/deeplines/buildingblocks/uow"
)

type note struct {
	bun.BaseModel `bun:"table:notes"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Body string `bun:"body,notnull"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*note)(nil)).Exec(context.Background())
	require.NoError(t, err)
	return db
}

func countNotes(t *testing.T, db *bun.DB) int {
	t.Helper()

	count, err := db.NewSelect().Model((*note)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestUnitOfWork_CommitPersistsWrites(t *testing.T) {
	db := newTestDB(t)
	u := uow.New(db)
	ctx := context.Background()

	require.NoError(t, u.Begin(ctx))
	assert.True(t, u.InTransaction())

	_, err := u.DB().NewInsert().Model(&note{Body: "hello"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, u.Commit(ctx))
	assert.False(t, u.InTransaction())
	assert.Equal(t, 1, countNotes(t, db))
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	db := newTestDB(t)
	u := uow.New(db)
	ctx := context.Background()

	require.NoError(t, u.Begin(ctx))
	_, err := u.DB().NewInsert().Model(&note{Body: "doomed"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, u.Rollback(ctx))
	assert.False(t, u.InTransaction())
	assert.Zero(t, countNotes(t, db))
}

func TestUnitOfWork_BeginTwiceFails(t *testing.T) {
	db := newTestDB(t)
	u := uow.New(db)
	ctx := context.Background()

	require.NoError(t, u.Begin(ctx))
	assert.Error(t, u.Begin(ctx))
	require.NoError(t, u.Rollback(ctx))
}

func TestUnitOfWork_CommitWithoutTransactionFails(t *testing.T) {
	u := uow.New(newTestDB(t))
	assert.Error(t, u.Commit(context.Background()))
}

func TestUnitOfWork_RollbackWithoutTransactionIsNoop(t *testing.T) {
	u := uow.New(newTestDB(t))
	assert.NoError(t, u.Rollback(context.Background()))
}

func TestUnitOfWork_DBFallsBackOutsideTransaction(t *testing.T) {
	db := newTestDB(t)
	u := uow.New(db)
	ctx := context.Background()

	_, err := u.DB().NewInsert().Model(&note{Body: "direct"}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, countNotes(t, db))
}

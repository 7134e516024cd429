package behavior

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

type placeOrderCmd struct {
	cqrs.RequestContext

	OrderID string
}

func TestTransaction_CommitsOnSuccess(t *testing.T) {
	u := &fakeUnitOfWork{}
	m := newMediator(NewTransaction(true, logger.NewNop()))
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*placeOrderCmd](func(context.Context, *placeOrderCmd) error {
		return nil
	}))
	require.NoError(t, err)

	cmd := &placeOrderCmd{OrderID: "o-1"}
	cmd.UnitOfWork = u
	cmd.RequiresTransaction = true

	require.NoError(t, m.SendCommand(context.Background(), cmd))
	assert.Equal(t, 1, u.begun)
	assert.Equal(t, 1, u.committed)
	assert.Equal(t, 0, u.rolledBack)
}

func TestTransaction_RollsBackOnHandlerError(t *testing.T) {
	u := &fakeUnitOfWork{}
	handlerErr := errors.New("insert failed")
	m := newMediator(NewTransaction(true, logger.NewNop()))
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*placeOrderCmd](func(context.Context, *placeOrderCmd) error {
		return handlerErr
	}))
	require.NoError(t, err)

	cmd := &placeOrderCmd{OrderID: "o-1"}
	cmd.UnitOfWork = u
	cmd.RequiresTransaction = true

	sendErr := m.SendCommand(context.Background(), cmd)
	require.Error(t, sendErr)

	var txErr *cqrs.TransactionError
	require.ErrorAs(t, sendErr, &txErr)
	assert.Equal(t, "rollback", txErr.Operation)
	assert.ErrorIs(t, sendErr, handlerErr)
	assert.Equal(t, 1, u.rolledBack)
	assert.Equal(t, 0, u.committed)
}

func TestTransaction_SkipsRequestsWithoutUnitOfWork(t *testing.T) {
	m := newMediator(NewTransaction(true, logger.NewNop()))
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*placeOrderCmd](func(context.Context, *placeOrderCmd) error {
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.SendCommand(context.Background(), &placeOrderCmd{OrderID: "o-2"}))
}

func TestTransaction_DoesNotCommitWithoutAutoCommit(t *testing.T) {
	u := &fakeUnitOfWork{}
	m := newMediator(NewTransaction(false, logger.NewNop()))
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*placeOrderCmd](func(context.Context, *placeOrderCmd) error {
		return nil
	}))
	require.NoError(t, err)

	cmd := &placeOrderCmd{OrderID: "o-3"}
	cmd.UnitOfWork = u
	cmd.RequiresTransaction = true

	require.NoError(t, m.SendCommand(context.Background(), cmd))
	assert.Equal(t, 1, u.begun)
	assert.Equal(t, 0, u.committed)
}

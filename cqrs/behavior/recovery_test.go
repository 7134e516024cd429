package behavior

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

type panicCmd struct {
	cqrs.RequestContext
}

func TestRecovery_ConvertsPanicToError(t *testing.T) {
	m := newMediator(NewRecovery(logger.NewNop()))
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*panicCmd](func(context.Context, *panicCmd) error {
		panic("boom")
	}))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		sendErr := m.SendCommand(context.Background(), &panicCmd{})
		require.Error(t, sendErr)

		var pipelineErr *cqrs.PipelineExecutionError
		assert.ErrorAs(t, sendErr, &pipelineErr)
	})
}

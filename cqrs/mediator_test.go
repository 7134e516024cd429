package cqrs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

type renameCmd struct {
	Name string
}

type scoreQuery struct {
	PlayerID string
}

type promoteCmd struct {
	UserID string
}

// traceBehavior records entry and exit around the rest of the pipeline.
type traceBehavior struct {
	label string
	trace *[]string
}

func (b *traceBehavior) Handle(ctx context.Context, _ cqrs.Request, next cqrs.Next) (any, error) {
	*b.trace = append(*b.trace, b.label+"_before")
	result, err := next(ctx)
	*b.trace = append(*b.trace, b.label+"_after")
	return result, err
}

func newMediator() *cqrs.Mediator {
	return cqrs.NewMediator(cqrs.WithLogger(logger.NewNop()))
}

func TestMediator_InvokesHandlerExactlyOnce(t *testing.T) {
	m := newMediator()

	var got []renameCmd
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(_ context.Context, cmd renameCmd) error {
		got = append(got, cmd)
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.SendCommand(context.Background(), renameCmd{Name: "n"}))
	require.Len(t, got, 1)
	assert.Equal(t, renameCmd{Name: "n"}, got[0])
}

func TestMediator_BehaviorsFormAnOnion(t *testing.T) {
	m := newMediator()

	var trace []string
	m.AddPipelineBehavior(&traceBehavior{label: "B1", trace: &trace})
	m.AddPipelineBehavior(&traceBehavior{label: "B2", trace: &trace})
	m.AddPipelineBehavior(&traceBehavior{label: "B3", trace: &trace})

	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(context.Context, renameCmd) error {
		trace = append(trace, "H")
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.SendCommand(context.Background(), renameCmd{}))
	assert.Equal(t, []string{
		"B1_before", "B2_before", "B3_before",
		"H",
		"B3_after", "B2_after", "B1_after",
	}, trace)
}

func TestMediator_HandlerNotFoundIsNeverWrapped(t *testing.T) {
	m := newMediator()

	var trace []string
	m.AddPipelineBehavior(&traceBehavior{label: "B1", trace: &trace})
	m.AddPipelineBehavior(&traceBehavior{label: "B2", trace: &trace})
	m.AddPipelineBehavior(&traceBehavior{label: "B3", trace: &trace})

	err := m.SendCommand(context.Background(), renameCmd{})
	require.Error(t, err)

	var notFound *cqrs.HandlerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "renameCmd", notFound.RequestType)
	assert.Equal(t, cqrs.CodeHandlerNotFound, cqrs.CodeOf(err))

	var pipelineErr *cqrs.PipelineExecutionError
	assert.False(t, errors.As(err, &pipelineErr))
}

func TestMediator_WrapsHandlerErrorsOnce(t *testing.T) {
	m := newMediator()

	handlerErr := errors.New("x")
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(context.Context, renameCmd) error {
		return handlerErr
	}))
	require.NoError(t, err)

	sendErr := m.SendCommand(context.Background(), renameCmd{})
	require.Error(t, sendErr)

	var pipelineErr *cqrs.PipelineExecutionError
	require.ErrorAs(t, sendErr, &pipelineErr)
	assert.Equal(t, "CommandExecution", pipelineErr.Phase)
	assert.Equal(t, "renameCmd", pipelineErr.RequestType)
	assert.ErrorIs(t, sendErr, handlerErr)
	assert.Same(t, handlerErr, pipelineErr.Err)
}

func TestMediator_PhaseMatchesDispatchMethod(t *testing.T) {
	m := newMediator()

	failure := errors.New("boom")
	err := cqrs.RegisterQueryHandler(m, cqrs.QueryHandlerFunc[scoreQuery, int](func(context.Context, scoreQuery) (int, error) {
		return 0, failure
	}))
	require.NoError(t, err)
	err = cqrs.RegisterCommandWithResponseHandler(m, cqrs.CommandWithResponseHandlerFunc[promoteCmd, string](func(context.Context, promoteCmd) (string, error) {
		return "", failure
	}))
	require.NoError(t, err)

	_, queryErr := m.SendQuery(context.Background(), scoreQuery{})
	var pipelineErr *cqrs.PipelineExecutionError
	require.ErrorAs(t, queryErr, &pipelineErr)
	assert.Equal(t, "QueryExecution", pipelineErr.Phase)

	_, cmdErr := m.SendCommandWithResponse(context.Background(), promoteCmd{})
	require.ErrorAs(t, cmdErr, &pipelineErr)
	assert.Equal(t, "CommandWithResponseExecution", pipelineErr.Phase)
}

func TestMediator_LastRegistrationWins(t *testing.T) {
	m := newMediator()

	require.NoError(t, cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(context.Context, renameCmd) error {
		return errors.New("old handler")
	})))
	require.NoError(t, cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(context.Context, renameCmd) error {
		return nil
	})))

	assert.NoError(t, m.SendCommand(context.Background(), renameCmd{}))
}

func TestMediator_RejectsNilHandler(t *testing.T) {
	m := newMediator()

	err := cqrs.RegisterCommandHandler[renameCmd](m, nil)
	require.Error(t, err)
	assert.Equal(t, cqrs.CodeRegistrationFailed, cqrs.CodeOf(err))
}

func TestMediator_TypedSendHelpers(t *testing.T) {
	m := newMediator()

	require.NoError(t, cqrs.RegisterQueryHandler(m, cqrs.QueryHandlerFunc[scoreQuery, int](func(context.Context, scoreQuery) (int, error) {
		return 1200, nil
	})))
	require.NoError(t, cqrs.RegisterCommandWithResponseHandler(m, cqrs.CommandWithResponseHandlerFunc[promoteCmd, string](func(_ context.Context, cmd promoteCmd) (string, error) {
		return "admin:" + cmd.UserID, nil
	})))

	score, err := cqrs.Query[int](context.Background(), m, scoreQuery{PlayerID: "p"})
	require.NoError(t, err)
	assert.Equal(t, 1200, score)

	role, err := cqrs.Execute[string](context.Background(), m, promoteCmd{UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "admin:u-1", role)
}

func TestMediator_QueriesAndCommandsHaveSeparateRegistries(t *testing.T) {
	m := newMediator()

	require.NoError(t, cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[renameCmd](func(context.Context, renameCmd) error {
		return nil
	})))

	_, err := m.SendQuery(context.Background(), renameCmd{})
	var notFound *cqrs.HandlerNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

package behavior

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/cqrs"
)

type createUserCmd struct {
	cqrs.RequestContext

	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"required"`
}

type withdrawCmd struct {
	cqrs.RequestContext

	Amount int `json:"amount"`
}

func (c *withdrawCmd) Validate() error {
	if c.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

func TestValidation_RejectsBeforeHandler(t *testing.T) {
	calls := 0
	m := newMediator(NewValidation())
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*createUserCmd](func(context.Context, *createUserCmd) error {
		calls++
		return nil
	}))
	require.NoError(t, err)

	sendErr := m.SendCommand(context.Background(), &createUserCmd{Email: "not-an-email"})
	require.Error(t, sendErr)

	var valErr *cqrs.ValidationError
	require.ErrorAs(t, sendErr, &valErr)
	assert.Equal(t, "createUserCmd", valErr.RequestType)
	assert.Len(t, valErr.Violations, 2)
	assert.Equal(t, 0, calls, "handler must not run for an invalid request")
}

func TestValidation_PassesValidRequests(t *testing.T) {
	calls := 0
	m := newMediator(NewValidation())
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*createUserCmd](func(context.Context, *createUserCmd) error {
		calls++
		return nil
	}))
	require.NoError(t, err)

	sendErr := m.SendCommand(context.Background(), &createUserCmd{Email: "a@b.co", Name: "a"})
	require.NoError(t, sendErr)
	assert.Equal(t, 1, calls)
}

func TestValidation_UsesSelfValidator(t *testing.T) {
	m := newMediator(NewValidation())
	err := cqrs.RegisterCommandHandler(m, cqrs.CommandHandlerFunc[*withdrawCmd](func(context.Context, *withdrawCmd) error {
		return nil
	}))
	require.NoError(t, err)

	sendErr := m.SendCommand(context.Background(), &withdrawCmd{Amount: -5})
	var valErr *cqrs.ValidationError
	require.ErrorAs(t, sendErr, &valErr)
	assert.Contains(t, valErr.Violations, "amount must be positive")

	require.NoError(t, m.SendCommand(context.Background(), &withdrawCmd{Amount: 10}))
}

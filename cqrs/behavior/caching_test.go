package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplines/buildingblocks/cqrs"
)

type balanceQuery struct {
	cqrs.RequestContext

	AccountID string
}

func TestCaching_ServesFromCacheWithinTTL(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := NewCaching(300 * time.Second)
	b.now = func() time.Time { return current }

	calls := 0
	m := newMediator(b)
	err := cqrs.RegisterQueryHandler(m, cqrs.QueryHandlerFunc[*balanceQuery, int](func(context.Context, *balanceQuery) (int, error) {
		calls++
		return 42, nil
	}))
	require.NoError(t, err)

	newQuery := func() *balanceQuery {
		q := &balanceQuery{AccountID: "a-1"}
		q.CacheKey = "balance:a-1"
		return q
	}

	first, err := m.SendQuery(context.Background(), newQuery())
	require.NoError(t, err)
	second, err := m.SendQuery(context.Background(), newQuery())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call within TTL must hit the cache")

	current = current.Add(301 * time.Second)
	_, err = m.SendQuery(context.Background(), newQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry must re-invoke the handler")
}

func TestCaching_KeysAreIndependent(t *testing.T) {
	b := NewCaching(time.Minute)

	calls := 0
	m := newMediator(b)
	err := cqrs.RegisterQueryHandler(m, cqrs.QueryHandlerFunc[*balanceQuery, string](func(_ context.Context, q *balanceQuery) (string, error) {
		calls++
		return q.AccountID, nil
	}))
	require.NoError(t, err)

	q1 := &balanceQuery{AccountID: "a-1"}
	q1.CacheKey = "balance:a-1"
	q2 := &balanceQuery{AccountID: "a-2"}
	q2.CacheKey = "balance:a-2"

	r1, err := m.SendQuery(context.Background(), q1)
	require.NoError(t, err)
	r2, err := m.SendQuery(context.Background(), q2)
	require.NoError(t, err)

	assert.Equal(t, "a-1", r1)
	assert.Equal(t, "a-2", r2)
	assert.Equal(t, 2, calls)
}

func TestCaching_SkipsRequestsWithoutKey(t *testing.T) {
	b := NewCaching(time.Minute)

	calls := 0
	m := newMediator(b)
	err := cqrs.RegisterQueryHandler(m, cqrs.QueryHandlerFunc[*balanceQuery, int](func(context.Context, *balanceQuery) (int, error) {
		calls++
		return calls, nil
	}))
	require.NoError(t, err)

	_, err = m.SendQuery(context.Background(), &balanceQuery{AccountID: "a-3"})
	require.NoError(t, err)
	_, err = m.SendQuery(context.Background(), &balanceQuery{AccountID: "a-3"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

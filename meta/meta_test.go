package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deeplines/buildingblocks/meta"
)

func TestInjectAndExtract(t *testing.T) {
	ctx := context.Background()

	ctx = meta.Inject(ctx, map[meta.ContextKey]string{
		meta.CorrelationID: "corr-1",
		meta.RequestUserID: "user-42",
		meta.ServiceName:   "", // empty values must be skipped
	})

	got := meta.Extract(ctx)

	assert.Equal(t, map[meta.ContextKey]string{
		meta.CorrelationID: "corr-1",
		meta.RequestUserID: "user-42",
	}, got)
}

func TestFind(t *testing.T) {
	ctx := meta.Inject(context.Background(), map[meta.ContextKey]string{
		meta.WorkspaceID: "ws-7",
	})

	assert.Equal(t, "ws-7", meta.Find(ctx, meta.WorkspaceID))
	assert.Empty(t, meta.Find(ctx, meta.RequestUserRole))
}

func TestExtractEmptyContext(t *testing.T) {
	got := meta.Extract(context.Background())
	assert.Empty(t, got)
}

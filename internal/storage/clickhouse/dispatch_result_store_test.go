package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestDispatchResultStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDispatchResultStore(conn)

	points := []*domain.DispatchResultPoint{
		{RunID: "r1", Iteration: 2, AssetID: "ct-1", TimepointID: "day", PowerMW: 40, BoundMW: 96},
		{RunID: "r1", Iteration: 1, AssetID: "ct-1", TimepointID: "day", PowerMW: 50, BoundMW: 96},
		{RunID: "r1", Iteration: 1, AssetID: "ct-1", TimepointID: "night", PowerMW: 20, BoundMW: 96},
		{RunID: "r2", Iteration: 1, AssetID: "ct-1", TimepointID: "day", PowerMW: 10, BoundMW: 48},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	byRun, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, byRun, 3)
	assert.Equal(t, 1, byRun[0].Iteration)
	assert.Equal(t, "day", byRun[0].TimepointID)
	assert.Equal(t, 2, byRun[2].Iteration)

	last, err := store.GetByIteration(ctx, "r1", 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, 40.0, last[0].PowerMW)
	assert.Equal(t, 96.0, last[0].BoundMW)
}

func TestDispatchResultStore_DuplicateIterationRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDispatchResultStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.DispatchResultPoint{
		{RunID: "r1", Iteration: 1, AssetID: "ct-1", TimepointID: "day", PowerMW: 50, BoundMW: 96},
	}))

	err := store.InsertBulk(ctx, []*domain.DispatchResultPoint{
		{RunID: "r1", Iteration: 1, AssetID: "ct-1", TimepointID: "night", PowerMW: 20, BoundMW: 96},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

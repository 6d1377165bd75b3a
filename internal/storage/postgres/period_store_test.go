package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestPeriodStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPeriodStore(pool)

	periods := []*domain.Period{
		{ID: "2040s", StartYear: 2040, EndYear: 2049},
		{ID: "2020s", StartYear: 2020, EndYear: 2029},
		{ID: "2030s", StartYear: 2030, EndYear: 2039},
	}
	for _, p := range periods {
		require.NoError(t, store.Insert(ctx, "ref", p))
	}

	// Duplicate (scenario, id) rejected
	err := store.Insert(ctx, "ref", periods[0])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same id under another scenario is allowed
	require.NoError(t, store.Insert(ctx, "alt", periods[0]))

	got, err := store.GetByID(ctx, "ref", "2030s")
	require.NoError(t, err)
	assert.Equal(t, 2030, got.StartYear)
	assert.Equal(t, 2039, got.EndYear)

	_, err = store.GetByID(ctx, "ref", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := store.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2020s", all[0].ID)
	assert.Equal(t, "2030s", all[1].ID)
	assert.Equal(t, "2040s", all[2].ID)
}

func TestTimescaleStores_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tsStore := NewTimeseriesStore(pool)
	require.NoError(t, tsStore.Insert(ctx, "ref", &domain.Timeseries{
		ID: "2030s-median", PeriodID: "2030s",
		HoursPerTimepoint: 4, TimepointCount: 6, ScaleToPeriod: 300,
	}))
	require.NoError(t, tsStore.Insert(ctx, "ref", &domain.Timeseries{
		ID: "2030s-peak", PeriodID: "2030s",
		HoursPerTimepoint: 1, TimepointCount: 24, ScaleToPeriod: 10,
	}))

	err := tsStore.Insert(ctx, "ref", &domain.Timeseries{ID: "2030s-median", PeriodID: "2030s"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	byPeriod, err := tsStore.GetByPeriod(ctx, "ref", "2030s")
	require.NoError(t, err)
	require.Len(t, byPeriod, 2)
	assert.Equal(t, "2030s-median", byPeriod[0].ID)
	assert.Equal(t, 4.0, byPeriod[0].HoursPerTimepoint)

	tpStore := NewTimepointStore(pool)
	require.NoError(t, tpStore.InsertBulk(ctx, "ref", []*domain.Timepoint{
		{ID: "m-2", TimeseriesID: "2030s-median", Label: "08:00", Ordinal: 1},
		{ID: "m-1", TimeseriesID: "2030s-median", Label: "04:00", Ordinal: 0},
	}))

	// Batch with a duplicate must not partially apply
	err = tpStore.InsertBulk(ctx, "ref", []*domain.Timepoint{
		{ID: "m-3", TimeseriesID: "2030s-median", Ordinal: 2},
		{ID: "m-1", TimeseriesID: "2030s-median", Ordinal: 0},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := tpStore.GetByTimeseries(ctx, "ref", "2030s-median")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-1", got[0].ID)
	assert.Equal(t, "m-2", got[1].ID)
}

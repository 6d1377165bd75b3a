package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestPortfolioStores_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	techStore := NewTechnologyStore(pool)
	tech := &domain.Technology{
		ID:                  "wind",
		Category:            domain.CategoryVariable,
		RetirementAge:       25,
		ForcedOutageRate:    0.02,
		ScheduledOutageRate: 0.05,
		OvernightCost:       1_500_000,
		FixedOM:             40_000,
		VariableOM:          0,
	}
	require.NoError(t, techStore.Insert(ctx, "ref", tech))

	err := techStore.Insert(ctx, "ref", tech)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := techStore.GetByID(ctx, "ref", "wind")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryVariable, got.Category)
	assert.Equal(t, 25, got.RetirementAge)
	assert.Equal(t, 0.02, got.ForcedOutageRate)
	assert.Equal(t, 1_500_000.0, got.OvernightCost)

	assetStore := NewAssetStore(pool)
	require.NoError(t, assetStore.Insert(ctx, "ref", &domain.Asset{ID: "wind-1", TechnologyID: "wind"}))
	require.NoError(t, assetStore.Insert(ctx, "ref", &domain.Asset{ID: "wind-2", TechnologyID: "wind"}))

	a, err := assetStore.GetByID(ctx, "ref", "wind-1")
	require.NoError(t, err)
	assert.Equal(t, "wind", a.TechnologyID)

	all, err := assetStore.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wind-1", all[0].ID)
}

func TestBuildStores_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	buildStore := NewPredeterminedBuildStore(pool)
	require.NoError(t, buildStore.Insert(ctx, "ref",
		&domain.PredeterminedBuild{AssetID: "plant-1", BuildYear: 2010, CapacityMW: 50}))
	require.NoError(t, buildStore.Insert(ctx, "ref",
		&domain.PredeterminedBuild{AssetID: "plant-1", BuildYear: 1995, CapacityMW: 100}))

	err := buildStore.Insert(ctx, "ref",
		&domain.PredeterminedBuild{AssetID: "plant-1", BuildYear: 2010, CapacityMW: 60})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	byAsset, err := buildStore.GetByAsset(ctx, "ref", "plant-1")
	require.NoError(t, err)
	require.Len(t, byAsset, 2)
	assert.Equal(t, 1995, byAsset[0].BuildYear)
	assert.Equal(t, 100.0, byAsset[0].CapacityMW)

	vintageStore := NewCandidateVintageStore(pool)
	require.NoError(t, vintageStore.Insert(ctx, "ref",
		&domain.CandidateVintage{AssetID: "plant-1", PeriodID: "2030s"}))

	err = vintageStore.Insert(ctx, "ref",
		&domain.CandidateVintage{AssetID: "plant-1", PeriodID: "2030s"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	vintages, err := vintageStore.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, vintages, 1)
	assert.Equal(t, "2030s", vintages[0].PeriodID)
}

func TestFinancialAndDemandAndRunStores(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	finStore := NewFinancialStore(pool)
	require.NoError(t, finStore.Insert(ctx, &domain.ScenarioFinancials{
		Scenario: "ref", BaseFinancialYear: 2025, InterestRate: 0.07, DiscountRate: 0.05,
	}))
	err := finStore.Insert(ctx, &domain.ScenarioFinancials{Scenario: "ref"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	fin, err := finStore.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	assert.Equal(t, 2025, fin.BaseFinancialYear)
	assert.Equal(t, 0.07, fin.InterestRate)

	_, err = finStore.GetByScenario(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	demandStore := NewDemandStore(pool)
	require.NoError(t, demandStore.InsertBulk(ctx, "ref", []*domain.DemandPoint{
		{TimepointID: "tp-2", DemandMW: 40},
		{TimepointID: "tp-1", DemandMW: 60},
	}))
	err = demandStore.InsertBulk(ctx, "ref", []*domain.DemandPoint{
		{TimepointID: "tp-3", DemandMW: 70},
		{TimepointID: "tp-1", DemandMW: 61},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	demand, err := demandStore.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, demand, 2, "failed batch must not partially apply")
	assert.Equal(t, "tp-1", demand[0].TimepointID)
	assert.Equal(t, 60.0, demand[0].DemandMW)

	runStore := NewRunStore(pool)
	require.NoError(t, runStore.Insert(ctx, &domain.SolveRun{
		RunID: "r1", Scenario: "ref", StartedAt: 100, FinishedAt: 250,
		Iterations: 4, Converged: true, Objective: 2.4e9,
	}))
	err = runStore.Insert(ctx, &domain.SolveRun{RunID: "r1", Scenario: "ref"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	run, err := runStore.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, run.Converged)
	assert.Equal(t, 4, run.Iterations)
	assert.Equal(t, 2.4e9, run.Objective)

	runs, err := runStore.GetByScenario(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

package orchestrator

import (
	"context"
	"testing"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/inputs"
	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/solver"
	"grid-expansion-lab/internal/storage/memory"
)

// testStores holds all memory stores for testing.
type testStores struct {
	inputs          inputs.Stores
	dispatchResults *memory.DispatchResultStore
	runs            *memory.RunStore
}

func createTestStores() *testStores {
	return &testStores{
		inputs: inputs.Stores{
			Periods:         memory.NewPeriodStore(),
			Timeseries:      memory.NewTimeseriesStore(),
			Timepoints:      memory.NewTimepointStore(),
			Technologies:    memory.NewTechnologyStore(),
			Assets:          memory.NewAssetStore(),
			Builds:          memory.NewPredeterminedBuildStore(),
			Vintages:        memory.NewCandidateVintageStore(),
			Financials:      memory.NewFinancialStore(),
			Demand:          memory.NewDemandStore(),
			CapacityFactors: memory.NewCapacityFactorStore(),
		},
		dispatchResults: memory.NewDispatchResultStore(),
		runs:            memory.NewRunStore(),
	}
}

// seedScenario loads one decade with a representative day and an existing
// peaker that can be expanded.
func seedScenario(t *testing.T, s *testStores, scenario string) {
	t.Helper()
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed scenario: %v", err)
		}
	}

	must(s.inputs.Financials.Insert(ctx, &domain.ScenarioFinancials{
		Scenario:          scenario,
		BaseFinancialYear: 2030,
		InterestRate:      0.07,
		DiscountRate:      0.05,
	}))
	must(s.inputs.Periods.Insert(ctx, scenario, &domain.Period{ID: "2030s", StartYear: 2030, EndYear: 2039}))
	must(s.inputs.Timeseries.Insert(ctx, scenario, &domain.Timeseries{
		ID:                "2030s-rep",
		PeriodID:          "2030s",
		HoursPerTimepoint: 12,
		TimepointCount:    2,
		ScaleToPeriod:     3652.5,
	}))
	must(s.inputs.Timepoints.InsertBulk(ctx, scenario, []*domain.Timepoint{
		{ID: "day", TimeseriesID: "2030s-rep", Label: "2035010112"},
		{ID: "night", TimeseriesID: "2030s-rep", Label: "2035010200"},
	}))
	must(s.inputs.Technologies.Insert(ctx, scenario, &domain.Technology{
		ID:               "gas-ct",
		Category:         domain.CategoryDispatchable,
		RetirementAge:    30,
		ForcedOutageRate: 0.04,
		OvernightCost:    800_000,
		FixedOM:          12_000,
		VariableOM:       45,
	}))
	must(s.inputs.Assets.Insert(ctx, scenario, &domain.Asset{ID: "ct-1", TechnologyID: "gas-ct"}))
	must(s.inputs.Builds.Insert(ctx, scenario, &domain.PredeterminedBuild{AssetID: "ct-1", BuildYear: 2028, CapacityMW: 40}))
	must(s.inputs.Vintages.Insert(ctx, scenario, &domain.CandidateVintage{AssetID: "ct-1", PeriodID: "2030s"}))
	must(s.inputs.Demand.InsertBulk(ctx, scenario, []*domain.DemandPoint{
		{TimepointID: "day", DemandMW: 60},
		{TimepointID: "night", DemandMW: 30},
	}))
}

func TestOrchestrator_Run_SingleSolve(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	seedScenario(t, stores, "base")

	orch := New(Options{
		InputStores:     stores.inputs,
		DispatchResults: stores.dispatchResults,
		Runs:            stores.runs,
		Solver:          solver.NewGreedy(),
		MaxIterations:   5,
	})

	result, err := orch.Run(ctx, "base")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}
	if !result.Converged {
		t.Error("static model should converge")
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}

	// Run summary is persisted.
	run, err := stores.runs.GetByID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetByID(run) error = %v", err)
	}
	if !run.Converged || run.Objective != result.Objective {
		t.Errorf("stored run = %+v", run)
	}

	// Dispatch of the single iteration is persisted, one row per
	// asset and timepoint, with the envelope bound stamped on.
	points, err := stores.dispatchResults.GetByIteration(ctx, result.RunID, 0)
	if err != nil {
		t.Fatalf("GetByIteration() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("persisted %d dispatch points, want 2", len(points))
	}
	for _, p := range points {
		if p.BoundMW <= 0 {
			t.Errorf("point %s/%s has bound %v", p.AssetID, p.TimepointID, p.BoundMW)
		}
		if p.PowerMW > p.BoundMW+1e-9 {
			t.Errorf("point %s/%s dispatched %v above bound %v",
				p.AssetID, p.TimepointID, p.PowerMW, p.BoundMW)
		}
	}
}

func TestOrchestrator_Run_DemandResponse(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	seedScenario(t, stores, "base")

	// Shave peak demand once in response to the first solution, then settle.
	adjusted := false
	evaluate := func(ctx context.Context, m *model.Model, sol *solver.Solution) (bool, error) {
		if adjusted {
			return false, nil
		}
		adjusted = true
		if err := m.SetDemand("day", 55); err != nil {
			return false, err
		}
		return true, nil
	}

	orch := New(Options{
		InputStores:     stores.inputs,
		DispatchResults: stores.dispatchResults,
		Runs:            stores.runs,
		Solver:          solver.NewGreedy(),
		MaxIterations:   10,
		Evaluate:        evaluate,
	})

	result, err := orch.Run(ctx, "base")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Converged {
		t.Error("expected convergence after demand settles")
	}
	if result.Iterations < 2 {
		t.Errorf("Iterations = %d, want at least 2", result.Iterations)
	}

	// Each iteration leaves its own dispatch rows.
	all, err := stores.dispatchResults.GetByRunID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetByRunID() error = %v", err)
	}
	if want := result.Iterations * 2; len(all) != want {
		t.Errorf("persisted %d dispatch points, want %d", len(all), want)
	}
}

func TestOrchestrator_Run_UnknownScenario(t *testing.T) {
	stores := createTestStores()

	orch := New(Options{
		InputStores:     stores.inputs,
		DispatchResults: stores.dispatchResults,
		Runs:            stores.runs,
		Solver:          solver.NewGreedy(),
		MaxIterations:   5,
	})

	if _, err := orch.Run(context.Background(), "ghost"); err == nil {
		t.Fatal("Run() expected error for unknown scenario")
	}
}

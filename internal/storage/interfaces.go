package storage

import (
	"context"

	"grid-expansion-lab/internal/domain"
)

// PeriodStore provides access to periods storage.
type PeriodStore interface {
	// Insert adds a new period. Returns ErrDuplicateKey if (scenario, id) exists.
	Insert(ctx context.Context, scenario string, p *domain.Period) error

	// GetByID retrieves a period by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenario, periodID string) (*domain.Period, error)

	// GetByScenario retrieves all periods of a scenario, ordered by start year ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.Period, error)
}

// TimeseriesStore provides access to timeseries storage.
type TimeseriesStore interface {
	// Insert adds a new timeseries. Returns ErrDuplicateKey if (scenario, id) exists.
	Insert(ctx context.Context, scenario string, ts *domain.Timeseries) error

	// GetByScenario retrieves all timeseries of a scenario, ordered by ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.Timeseries, error)

	// GetByPeriod retrieves the timeseries attached to a period, ordered by ID ASC.
	GetByPeriod(ctx context.Context, scenario, periodID string) ([]*domain.Timeseries, error)
}

// TimepointStore provides access to timepoints storage.
type TimepointStore interface {
	// InsertBulk adds multiple timepoints. Fails entire batch on duplicate (scenario, id).
	InsertBulk(ctx context.Context, scenario string, points []*domain.Timepoint) error

	// GetByScenario retrieves all timepoints of a scenario, ordered by
	// timeseries ID then ordinal ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.Timepoint, error)

	// GetByTimeseries retrieves the timepoints of one series, ordered by ordinal ASC.
	GetByTimeseries(ctx context.Context, scenario, timeseriesID string) ([]*domain.Timepoint, error)
}

// TechnologyStore provides access to technologies storage.
type TechnologyStore interface {
	// Insert adds a new technology. Returns ErrDuplicateKey if (scenario, id) exists.
	Insert(ctx context.Context, scenario string, tech *domain.Technology) error

	// GetByID retrieves a technology by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenario, technologyID string) (*domain.Technology, error)

	// GetByScenario retrieves all technologies of a scenario, ordered by ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.Technology, error)
}

// AssetStore provides access to assets storage.
type AssetStore interface {
	// Insert adds a new asset. Returns ErrDuplicateKey if (scenario, id) exists.
	Insert(ctx context.Context, scenario string, a *domain.Asset) error

	// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenario, assetID string) (*domain.Asset, error)

	// GetByScenario retrieves all assets of a scenario, ordered by ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.Asset, error)
}

// PredeterminedBuildStore provides access to predetermined_builds storage.
type PredeterminedBuildStore interface {
	// Insert adds a build. Returns ErrDuplicateKey if (scenario, asset_id, build_year) exists.
	Insert(ctx context.Context, scenario string, b *domain.PredeterminedBuild) error

	// GetByScenario retrieves all builds of a scenario, ordered by asset ID
	// then build year ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.PredeterminedBuild, error)

	// GetByAsset retrieves the builds of one asset, ordered by build year ASC.
	GetByAsset(ctx context.Context, scenario, assetID string) ([]*domain.PredeterminedBuild, error)
}

// CandidateVintageStore provides access to candidate_vintages storage.
type CandidateVintageStore interface {
	// Insert adds a vintage. Returns ErrDuplicateKey if (scenario, asset_id, period_id) exists.
	Insert(ctx context.Context, scenario string, v *domain.CandidateVintage) error

	// GetByScenario retrieves all vintages of a scenario, ordered by asset ID
	// then period ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.CandidateVintage, error)
}

// FinancialStore provides access to scenario_financials storage.
type FinancialStore interface {
	// Insert adds financial parameters. Returns ErrDuplicateKey if the scenario exists.
	Insert(ctx context.Context, f *domain.ScenarioFinancials) error

	// GetByScenario retrieves the parameters of a scenario. Returns ErrNotFound if not exists.
	GetByScenario(ctx context.Context, scenario string) (*domain.ScenarioFinancials, error)
}

// DemandStore provides access to demand_points storage.
type DemandStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (scenario, timepoint_id).
	InsertBulk(ctx context.Context, scenario string, points []*domain.DemandPoint) error

	// GetByScenario retrieves all points of a scenario, ordered by timepoint ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.DemandPoint, error)
}

// CapacityFactorStore provides access to capacity_factors storage.
type CapacityFactorStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (scenario, asset_id, timepoint_id).
	InsertBulk(ctx context.Context, scenario string, points []*domain.CapacityFactorPoint) error

	// GetByScenario retrieves all points of a scenario, ordered by asset ID
	// then timepoint ID ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.CapacityFactorPoint, error)

	// GetByAsset retrieves the points of one asset, ordered by timepoint ID ASC.
	GetByAsset(ctx context.Context, scenario, assetID string) ([]*domain.CapacityFactorPoint, error)
}

// DispatchResultStore provides access to dispatch_results storage.
type DispatchResultStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (run_id, iteration, asset_id, timepoint_id).
	InsertBulk(ctx context.Context, points []*domain.DispatchResultPoint) error

	// GetByRunID retrieves all points of a run, ordered by iteration, asset ID,
	// timepoint ID ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.DispatchResultPoint, error)

	// GetByIteration retrieves the points of one iteration of a run, ordered by
	// asset ID then timepoint ID ASC.
	GetByIteration(ctx context.Context, runID string, iteration int) ([]*domain.DispatchResultPoint, error)
}

// RunStore provides access to solve_runs storage.
type RunStore interface {
	// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.SolveRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SolveRun, error)

	// GetByScenario retrieves all runs of a scenario, ordered by start time ASC.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.SolveRun, error)
}

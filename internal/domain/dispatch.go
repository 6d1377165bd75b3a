package domain

// CapacityFactorPoint is an exogenous per-timepoint output factor for a
// variable asset, supplied by weather/resource data. Factors can be slightly
// negative (solar thermal auxiliary loads) or above 1 (diffuse-light solar).
// Corresponds to capacity_factors table in ClickHouse.
type CapacityFactorPoint struct {
	AssetID     string  // FK to assets
	TimepointID string  // FK to timepoints
	Factor      float64 // fraction of derated capacity available
}

// DemandPoint is the load that must be served in a timepoint.
// Corresponds to demand table in ClickHouse.
type DemandPoint struct {
	TimepointID string  // FK to timepoints
	DemandMW    float64 // average load across the timepoint
}

// DispatchResultPoint is one asset's dispatch in one timepoint of a solve
// iteration.
// Corresponds to dispatch_results table in ClickHouse.
type DispatchResultPoint struct {
	RunID       string  // FK to solve_runs
	Iteration   int     // convergence-loop round, starting at 0
	AssetID     string  // FK to assets
	TimepointID string  // FK to timepoints
	PowerMW     float64 // dispatched power
	BoundMW     float64 // envelope upper bound at solve time
}

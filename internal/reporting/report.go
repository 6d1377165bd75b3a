package reporting

import "time"

// Report summarizes one completed planning run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Scenario    string

	// Solve outcome
	Converged    bool
	Iterations   int
	ObjectiveNPV float64

	// Cost breakdown (sorted by term name)
	CostBreakdown []CostRow

	// Capacity decisions (sorted by asset_id, build_year)
	CapacityDecisions []CapacityRow

	// Per-period summaries (sorted by start year)
	PeriodSummaries []PeriodRow

	// Per-timepoint marginal costs and unserved demand (sorted by timepoint_id)
	Marginals []MarginalRow
	Unserved  []UnservedRow
}

// CostRow is one cost term's NPV contribution.
type CostRow struct {
	Term     string
	NPV      float64
	SharePct float64 // of the total objective, 0 if the objective is 0
}

// CapacityRow is one build's capacity on the books.
type CapacityRow struct {
	BuildID      string
	AssetID      string
	TechnologyID string
	BuildYear    int
	Kind         string // predetermined or candidate
	CapacityMW   float64
}

// PeriodRow summarizes one investment period.
type PeriodRow struct {
	PeriodID     string
	StartYear    int
	EndYear      int
	PeakDemandMW float64
	InstalledMW  float64 // total capacity operational in the period
}

// MarginalRow is the marginal supply cost at one timepoint.
type MarginalRow struct {
	TimepointID string
	CostPerMWh  float64
}

// UnservedRow is demand left unserved at one timepoint.
type UnservedRow struct {
	TimepointID string
	UnservedMW  float64
}

// Package solver defines the optimization boundary of the planner.
//
// A Solver takes a fully assembled model and produces capacity decisions for
// every candidate build plus a dispatch level for every (asset, timepoint).
// The package ships a deterministic greedy solver good enough for demand
// iteration and testing; an LP-backed implementation can replace it behind
// the same interface.
package solver

import (
	"context"

	"grid-expansion-lab/internal/model"
)

// Solution is one solver outcome, already applied to the model it was
// solved against.
type Solution struct {
	// CapacityMW holds the decided capacity of every candidate build,
	// keyed by build id.
	CapacityMW map[string]float64
	// DispatchMW holds power output keyed by asset id then timepoint id.
	DispatchMW map[string]map[string]float64
	// MarginalCost is the variable cost of the most expensive dispatched
	// asset at each timepoint, in $/MWh. Zero when must-run capacity alone
	// covers the load.
	MarginalCost map[string]float64
	// UnservedMW records demand that no envelope could cover, keyed by
	// timepoint id. Empty for a feasible solution.
	UnservedMW map[string]float64
	// Objective is the model's total cost in base-year dollars.
	Objective float64
}

// Feasible reports whether every timepoint's demand was fully served.
func (s *Solution) Feasible() bool {
	return len(s.UnservedMW) == 0
}

// Solver produces a solution for a model. Implementations mutate the model
// in place (candidate capacities and dispatch) and report what they chose.
type Solver interface {
	Solve(ctx context.Context, m *model.Model) (*Solution, error)
}

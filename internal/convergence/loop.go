// Package convergence runs the solve and re-evaluate cycle until the
// objective settles.
//
// Demand iteration is the canonical use: solve, let the evaluation hook
// adjust price-responsive demand against the solution's marginal costs, and
// solve again until the system cost stops moving.
package convergence

import (
	"context"
	"math"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/solver"
)

// State is the loop's position in its lifecycle.
type State string

// Loop states
const (
	StateInitializing          State = "initializing"
	StateSolving               State = "solving"
	StateEvaluating            State = "evaluating"
	StateConverged             State = "converged"
	StateIterationLimitReached State = "iteration_limit_reached"
)

// EvaluateFunc inspects a fresh solution and may mutate the model (demand,
// typically) in response. It returns true if it changed anything the next
// solve should see.
type EvaluateFunc func(ctx context.Context, m *model.Model, sol *solver.Solution) (mutated bool, err error)

// IterationFunc observes each completed iteration, 1-based.
type IterationFunc func(iteration int, state State, sol *solver.Solution)

// Options configures a loop.
type Options struct {
	Solver        solver.Solver
	MaxIterations int     // required, at least 1
	Tolerance     float64 // relative objective tolerance, default 1e-6

	// Evaluate runs after every solve. Nil means the model is static and
	// the loop converges after one solve.
	Evaluate EvaluateFunc
	// OnIteration, if set, is called after every iteration.
	OnIteration IterationFunc
}

// Result is the loop outcome.
type Result struct {
	State      State
	Iterations int
	Objective  float64
	Final      *solver.Solution
}

// Converged reports whether the loop settled within the iteration limit.
func (r *Result) Converged() bool { return r.State == StateConverged }

// Loop drives a solver to a fixed point.
type Loop struct {
	opts Options
}

// NewLoop validates options and returns a loop.
func NewLoop(opts Options) (*Loop, error) {
	if opts.Solver == nil {
		return nil, domain.Configf("convergence loop: nil solver")
	}
	if opts.MaxIterations < 1 {
		return nil, domain.Configf("convergence loop: max iterations must be at least 1, got %d", opts.MaxIterations)
	}
	if opts.Tolerance < 0 {
		return nil, domain.Configf("convergence loop: negative tolerance %v", opts.Tolerance)
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = 1e-6
	}
	return &Loop{opts: opts}, nil
}

// Run iterates until the objective is stable and the evaluation hook stops
// mutating the model, or the iteration limit is hit. The limit outcome is
// reported as a state, not an error: the last solution is still usable.
func (l *Loop) Run(ctx context.Context, m *model.Model) (*Result, error) {
	res := &Result{State: StateInitializing}
	prev := math.NaN()

	for res.Iterations < l.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.State = StateSolving
		sol, err := l.opts.Solver.Solve(ctx, m)
		if err != nil {
			return nil, err
		}
		res.Iterations++
		res.Final = sol
		res.Objective = sol.Objective

		mutated := false
		if l.opts.Evaluate != nil {
			res.State = StateEvaluating
			mutated, err = l.opts.Evaluate(ctx, m, sol)
			if err != nil {
				return nil, err
			}
		}

		settled := !math.IsNaN(prev) && l.withinTolerance(prev, sol.Objective)
		if l.opts.Evaluate == nil {
			settled = true
		}
		if settled && !mutated {
			res.State = StateConverged
		}

		if l.opts.OnIteration != nil {
			l.opts.OnIteration(res.Iterations, res.State, sol)
		}
		if res.State == StateConverged {
			return res, nil
		}
		prev = sol.Objective
	}
	res.State = StateIterationLimitReached
	return res, nil
}

func (l *Loop) withinTolerance(prev, cur float64) bool {
	scale := math.Max(1, math.Abs(prev))
	return math.Abs(cur-prev) <= l.opts.Tolerance*scale
}

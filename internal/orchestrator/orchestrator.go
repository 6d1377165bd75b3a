// Package orchestrator provides end-to-end planning-run orchestration.
// It coordinates: assembly → convergence solve → persistence
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"grid-expansion-lab/internal/convergence"
	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/idhash"
	"grid-expansion-lab/internal/inputs"
	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/observability"
	"grid-expansion-lab/internal/progress"
	"grid-expansion-lab/internal/solver"
	"grid-expansion-lab/internal/storage"
)

// Orchestrator coordinates a full planning run for one scenario.
// Flow: assemble model → iterate solver to convergence → persist results
type Orchestrator struct {
	// Stores
	inputStores     inputs.Stores
	dispatchResults storage.DispatchResultStore
	runs            storage.RunStore

	// Solve configuration
	solver        solver.Solver
	maxIterations int
	tolerance     float64
	evaluate      convergence.EvaluateFunc

	// Options
	hub     *progress.Hub
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	InputStores     inputs.Stores
	DispatchResults storage.DispatchResultStore
	Runs            storage.RunStore

	// Solve configuration
	Solver        solver.Solver
	MaxIterations int
	Tolerance     float64

	// Evaluate runs after every solve and may mutate the model (demand
	// response). Nil means a single solve suffices.
	Evaluate convergence.EvaluateFunc

	// Options
	Hub     *progress.Hub // optional WebSocket progress broadcasting
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		inputStores:     opts.InputStores,
		dispatchResults: opts.DispatchResults,
		runs:            opts.Runs,
		solver:          opts.Solver,
		maxIterations:   opts.MaxIterations,
		tolerance:       opts.Tolerance,
		evaluate:        opts.Evaluate,
		hub:             opts.Hub,
		verbose:         opts.Verbose,
	}
}

// RunResult contains results from one planning run.
type RunResult struct {
	RunID      string
	Scenario   string
	Converged  bool
	Iterations int
	Objective  float64
	CapacityMW map[string]float64 // decided candidate capacity per build ID
	Errors     []string

	// Model and Final carry the solved state for report generation.
	Model *model.Model
	Final *solver.Solution
}

// Run executes a full planning run.
// Phases:
//  1. Assemble the model from storage
//  2. Iterate the solver until the system cost converges
//  3. Persist the run summary
//
// Per-iteration dispatch is persisted as the loop goes, so a run that hits
// the iteration limit still leaves its trajectory behind.
func (o *Orchestrator) Run(ctx context.Context, scenario string) (*RunResult, error) {
	startedAt := time.Now()
	runID := idhash.ComputeRunID(scenario, startedAt.UnixMilli())
	result := &RunResult{RunID: runID, Scenario: scenario}

	// Phase 1: Assembly
	o.log("Phase 1: Assembling scenario %q...", scenario)
	m, err := inputs.NewAssembler(o.inputStores, scenario).Assemble(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (assemble) failed: %w", err)
	}

	// Phase 2: Convergence solve
	o.log("Phase 2: Solving (max %d iterations)...", o.maxIterations)
	loop, err := convergence.NewLoop(convergence.Options{
		Solver:        o.solver,
		MaxIterations: o.maxIterations,
		Tolerance:     o.tolerance,
		Evaluate:      o.evaluate,
		OnIteration:   o.iterationHook(ctx, m, scenario, runID, result),
	})
	if err != nil {
		return nil, err
	}

	loopResult, err := loop.Run(ctx, m)
	if err != nil {
		observability.RecordSolveRun(scenario, "error", time.Since(startedAt).Seconds(), 0)
		return nil, fmt.Errorf("phase 2 (solve) failed: %w", err)
	}
	result.Converged = loopResult.Converged()
	result.Iterations = loopResult.Iterations
	result.Objective = loopResult.Objective
	result.CapacityMW = loopResult.Final.CapacityMW
	result.Model = m
	result.Final = loopResult.Final
	o.log("  %s after %d iterations, objective %.2f",
		loopResult.State, loopResult.Iterations, loopResult.Objective)

	// Phase 3: Persist run summary
	o.log("Phase 3: Recording run %s...", runID)
	run := &domain.SolveRun{
		RunID:      runID,
		Scenario:   scenario,
		StartedAt:  startedAt.UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
		Iterations: loopResult.Iterations,
		Converged:  loopResult.Converged(),
		Objective:  loopResult.Objective,
	}
	if err := o.runs.Insert(ctx, run); err != nil {
		return nil, fmt.Errorf("phase 3 (record run) failed: %w", err)
	}

	outcome := "converged"
	if !result.Converged {
		outcome = "iteration_limit"
	}
	observability.RecordSolveRun(scenario, outcome, time.Since(startedAt).Seconds(), result.Iterations)
	observability.RecordLastSuccessfulSolve(time.Now().Unix())

	o.log("Run completed: %d iterations, %d errors", result.Iterations, len(result.Errors))
	return result, nil
}

// iterationHook persists and broadcasts each iteration as it completes.
// Persistence failures are collected rather than aborting the solve.
func (o *Orchestrator) iterationHook(ctx context.Context, m *model.Model, scenario, runID string, result *RunResult) convergence.IterationFunc {
	return func(iteration int, state convergence.State, sol *solver.Solution) {
		observability.RecordIteration(scenario, sol.Objective)
		for range sol.UnservedMW {
			observability.RecordUnservedTimepoint()
		}

		if err := o.persistIteration(ctx, m, runID, iteration-1, sol); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("persist iteration %d: %v", iteration, err))
		}

		if o.hub != nil {
			o.hub.Broadcast(progress.Event{
				Scenario:  scenario,
				RunID:     runID,
				Iteration: iteration,
				State:     string(state),
				Objective: sol.Objective,
			})
			observability.RecordProgressEvent()
		}
	}
}

// persistIteration stores one iteration's dispatch, stamped with the envelope
// bound that applied at solve time.
func (o *Orchestrator) persistIteration(ctx context.Context, m *model.Model, runID string, iteration int, sol *solver.Solution) error {
	assetIDs := make([]string, 0, len(sol.DispatchMW))
	for assetID := range sol.DispatchMW {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Strings(assetIDs)

	var points []*domain.DispatchResultPoint
	for _, assetID := range assetIDs {
		byTimepoint := sol.DispatchMW[assetID]
		tpIDs := make([]string, 0, len(byTimepoint))
		for tpID := range byTimepoint {
			tpIDs = append(tpIDs, tpID)
		}
		sort.Strings(tpIDs)

		for _, tpID := range tpIDs {
			env, err := m.Envelopes.For(assetID, tpID)
			if err != nil {
				return err
			}
			points = append(points, &domain.DispatchResultPoint{
				RunID:       runID,
				Iteration:   iteration,
				AssetID:     assetID,
				TimepointID: tpID,
				PowerMW:     byTimepoint[tpID],
				BoundMW:     env.UpperMW,
			})
		}
	}

	return o.dispatchResults.InsertBulk(ctx, points)
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}

package convergence

import (
	"context"
	"testing"

	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/solver"
)

// scriptedSolver replays a fixed objective sequence, repeating the last
// value once the script runs out.
type scriptedSolver struct {
	objectives []float64
	calls      int
}

func (s *scriptedSolver) Solve(ctx context.Context, m *model.Model) (*solver.Solution, error) {
	i := s.calls
	if i >= len(s.objectives) {
		i = len(s.objectives) - 1
	}
	s.calls++
	return &solver.Solution{Objective: s.objectives[i]}, nil
}

func neverMutates(ctx context.Context, m *model.Model, sol *solver.Solution) (bool, error) {
	return false, nil
}

func TestRun_NilEvaluateConvergesAfterOneSolve(t *testing.T) {
	s := &scriptedSolver{objectives: []float64{1000}}
	l, err := NewLoop(Options{Solver: s, MaxIterations: 10})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	res, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Converged() || res.Iterations != 1 {
		t.Errorf("expected convergence after 1 iteration, got %s after %d", res.State, res.Iterations)
	}
	if res.Objective != 1000 {
		t.Errorf("expected objective 1000, got %v", res.Objective)
	}
}

func TestRun_ConvergesWhenObjectiveSettles(t *testing.T) {
	s := &scriptedSolver{objectives: []float64{100, 90, 90}}
	l, err := NewLoop(Options{Solver: s, MaxIterations: 10, Evaluate: neverMutates})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	res, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Converged() {
		t.Fatalf("expected convergence, got %s", res.State)
	}
	if res.Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", res.Iterations)
	}
	if res.Objective != 90 {
		t.Errorf("expected final objective 90, got %v", res.Objective)
	}
}

func TestRun_MutationBlocksConvergence(t *testing.T) {
	// The objective is flat but the evaluation hook keeps moving demand,
	// so the loop must run to its limit.
	s := &scriptedSolver{objectives: []float64{50}}
	l, err := NewLoop(Options{
		Solver:        s,
		MaxIterations: 4,
		Evaluate: func(ctx context.Context, m *model.Model, sol *solver.Solution) (bool, error) {
			return true, nil
		},
	})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	res, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != StateIterationLimitReached {
		t.Errorf("expected iteration limit state, got %s", res.State)
	}
	if res.Iterations != 4 {
		t.Errorf("expected 4 iterations, got %d", res.Iterations)
	}
	if res.Final == nil {
		t.Error("limit outcome should still carry the last solution")
	}
}

func TestRun_ToleranceAbsorbsSmallChanges(t *testing.T) {
	s := &scriptedSolver{objectives: []float64{1_000_000, 1_000_000.5}}
	l, err := NewLoop(Options{
		Solver:        s,
		MaxIterations: 10,
		Tolerance:     1e-5,
		Evaluate:      neverMutates,
	})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	res, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Converged() || res.Iterations != 2 {
		t.Errorf("expected convergence after 2 iterations, got %s after %d", res.State, res.Iterations)
	}
}

func TestRun_ObservesEveryIteration(t *testing.T) {
	s := &scriptedSolver{objectives: []float64{100, 90, 90}}
	var seen []int
	var last State
	l, err := NewLoop(Options{
		Solver:        s,
		MaxIterations: 10,
		Evaluate:      neverMutates,
		OnIteration: func(iteration int, state State, sol *solver.Solution) {
			seen = append(seen, iteration)
			last = state
		},
	})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	if _, err := l.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("expected callbacks for iterations 1..3, got %v", seen)
	}
	if last != StateConverged {
		t.Errorf("expected final callback in converged state, got %s", last)
	}
}

func TestNewLoop_Validation(t *testing.T) {
	if _, err := NewLoop(Options{MaxIterations: 1}); err == nil {
		t.Error("expected error for nil solver")
	}
	s := &scriptedSolver{objectives: []float64{1}}
	if _, err := NewLoop(Options{Solver: s, MaxIterations: 0}); err == nil {
		t.Error("expected error for zero iteration limit")
	}
	if _, err := NewLoop(Options{Solver: s, MaxIterations: 1, Tolerance: -1}); err == nil {
		t.Error("expected error for negative tolerance")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	s := &scriptedSolver{objectives: []float64{1}}
	l, err := NewLoop(Options{Solver: s, MaxIterations: 10, Evaluate: neverMutates})
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Run(ctx, nil); err == nil {
		t.Error("expected error from cancelled context")
	}
}

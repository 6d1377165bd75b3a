package memory

import (
	"context"
	"errors"
	"testing"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	s := NewRunStore()
	ctx := context.Background()

	r := &domain.SolveRun{
		RunID: "r1", Scenario: "ref", StartedAt: 100, FinishedAt: 200,
		Iterations: 3, Converged: true, Objective: 1.5e9,
	}
	if err := s.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Converged || got.Iterations != 3 {
		t.Errorf("unexpected run: %+v", got)
	}

	if err := s.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_GetByScenarioOrdersByStart(t *testing.T) {
	s := NewRunStore()
	ctx := context.Background()

	for _, r := range []*domain.SolveRun{
		{RunID: "r2", Scenario: "ref", StartedAt: 200},
		{RunID: "r1", Scenario: "ref", StartedAt: 100},
		{RunID: "x1", Scenario: "other", StartedAt: 50},
	} {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.GetByScenario(ctx, "ref")
	if err != nil {
		t.Fatalf("GetByScenario failed: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "r1" || got[1].RunID != "r2" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestDispatchResultStore_InsertBulkAndGet(t *testing.T) {
	s := NewDispatchResultStore()
	ctx := context.Background()

	points := []*domain.DispatchResultPoint{
		{RunID: "r1", Iteration: 2, AssetID: "ct-1", TimepointID: "day", PowerMW: 40, BoundMW: 96},
		{RunID: "r1", Iteration: 1, AssetID: "ct-1", TimepointID: "day", PowerMW: 50, BoundMW: 96},
		{RunID: "r2", Iteration: 1, AssetID: "ct-1", TimepointID: "day", PowerMW: 10, BoundMW: 96},
	}
	if err := s.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := s.GetByRunID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 2 || got[0].Iteration != 1 || got[1].Iteration != 2 {
		t.Errorf("expected iteration order, got %v", got)
	}

	last, err := s.GetByIteration(ctx, "r1", 2)
	if err != nil {
		t.Fatalf("GetByIteration failed: %v", err)
	}
	if len(last) != 1 || last[0].PowerMW != 40 {
		t.Errorf("unexpected iteration rows: %v", last)
	}

	if err := s.InsertBulk(ctx, points[:1]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

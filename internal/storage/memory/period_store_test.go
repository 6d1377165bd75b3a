package memory

import (
	"context"
	"errors"
	"testing"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestPeriodStore_InsertAndGet(t *testing.T) {
	s := NewPeriodStore()
	ctx := context.Background()

	p := &domain.Period{ID: "2030s", StartYear: 2030, EndYear: 2039}
	if err := s.Insert(ctx, "ref", p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.GetByID(ctx, "ref", "2030s")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.StartYear != 2030 || got.EndYear != 2039 {
		t.Errorf("unexpected period: %+v", got)
	}

	// Mutating the returned copy must not affect the store.
	got.StartYear = 1
	again, err := s.GetByID(ctx, "ref", "2030s")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.StartYear != 2030 {
		t.Error("store returned a shared pointer")
	}
}

func TestPeriodStore_DuplicateKey(t *testing.T) {
	s := NewPeriodStore()
	ctx := context.Background()

	p := &domain.Period{ID: "2030s", StartYear: 2030, EndYear: 2039}
	if err := s.Insert(ctx, "ref", p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Insert(ctx, "ref", p); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	// Same ID under a different scenario is fine.
	if err := s.Insert(ctx, "alt", p); err != nil {
		t.Errorf("insert under other scenario failed: %v", err)
	}
}

func TestPeriodStore_NotFound(t *testing.T) {
	s := NewPeriodStore()
	if _, err := s.GetByID(context.Background(), "ref", "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPeriodStore_GetByScenarioOrdersByStartYear(t *testing.T) {
	s := NewPeriodStore()
	ctx := context.Background()

	for _, p := range []*domain.Period{
		{ID: "2040s", StartYear: 2040, EndYear: 2049},
		{ID: "2020s", StartYear: 2020, EndYear: 2029},
		{ID: "2030s", StartYear: 2030, EndYear: 2039},
	} {
		if err := s.Insert(ctx, "ref", p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.GetByScenario(ctx, "ref")
	if err != nil {
		t.Fatalf("GetByScenario failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "2020s" || got[1].ID != "2030s" || got[2].ID != "2040s" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestPeriodStore_InvalidInput(t *testing.T) {
	s := NewPeriodStore()
	ctx := context.Background()
	if err := s.Insert(ctx, "", &domain.Period{ID: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty scenario, got %v", err)
	}
	if err := s.Insert(ctx, "ref", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil period, got %v", err)
	}
	if err := s.Insert(ctx, "ref", &domain.Period{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

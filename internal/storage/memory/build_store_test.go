package memory

import (
	"context"
	"errors"
	"testing"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

func TestPredeterminedBuildStore_InsertAndGet(t *testing.T) {
	s := NewPredeterminedBuildStore()
	ctx := context.Background()

	for _, b := range []*domain.PredeterminedBuild{
		{AssetID: "plant-1", BuildYear: 2010, CapacityMW: 50},
		{AssetID: "plant-1", BuildYear: 1995, CapacityMW: 100},
		{AssetID: "plant-2", BuildYear: 2005, CapacityMW: 30},
	} {
		if err := s.Insert(ctx, "ref", b); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.GetByAsset(ctx, "ref", "plant-1")
	if err != nil {
		t.Fatalf("GetByAsset failed: %v", err)
	}
	if len(got) != 2 || got[0].BuildYear != 1995 || got[1].BuildYear != 2010 {
		t.Errorf("expected builds in year order, got %v", got)
	}

	all, err := s.GetByScenario(ctx, "ref")
	if err != nil {
		t.Fatalf("GetByScenario failed: %v", err)
	}
	if len(all) != 3 || all[0].AssetID != "plant-1" || all[2].AssetID != "plant-2" {
		t.Errorf("unexpected scenario ordering: %v", all)
	}
}

func TestPredeterminedBuildStore_DuplicateVintage(t *testing.T) {
	s := NewPredeterminedBuildStore()
	ctx := context.Background()

	b := &domain.PredeterminedBuild{AssetID: "plant-1", BuildYear: 2010, CapacityMW: 50}
	if err := s.Insert(ctx, "ref", b); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Insert(ctx, "ref", b); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	// Same asset, different year is a new vintage.
	other := &domain.PredeterminedBuild{AssetID: "plant-1", BuildYear: 2015, CapacityMW: 25}
	if err := s.Insert(ctx, "ref", other); err != nil {
		t.Errorf("second vintage failed: %v", err)
	}
}

func TestCandidateVintageStore_InsertAndGet(t *testing.T) {
	s := NewCandidateVintageStore()
	ctx := context.Background()

	for _, v := range []*domain.CandidateVintage{
		{AssetID: "wind-1", PeriodID: "2040s"},
		{AssetID: "wind-1", PeriodID: "2030s"},
	} {
		if err := s.Insert(ctx, "ref", v); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.GetByScenario(ctx, "ref")
	if err != nil {
		t.Fatalf("GetByScenario failed: %v", err)
	}
	if len(got) != 2 || got[0].PeriodID != "2030s" || got[1].PeriodID != "2040s" {
		t.Errorf("expected period order, got %v", got)
	}

	dup := &domain.CandidateVintage{AssetID: "wind-1", PeriodID: "2030s"}
	if err := s.Insert(ctx, "ref", dup); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

package lifecycle

import (
	"errors"
	"testing"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/timescale"
)

// threeDecades builds a hierarchy with periods 2020-2029, 2030-2039,
// 2040-2049, each carrying one fully weighted timeseries.
func threeDecades(t *testing.T) *timescale.Hierarchy {
	t.Helper()
	b := timescale.NewBuilder()
	periods := []struct {
		id         string
		start, end int
	}{
		{"2020s", 2020, 2029},
		{"2030s", 2030, 2039},
		{"2040s", 2040, 2049},
	}
	for _, p := range periods {
		if err := b.AddPeriod(p.id, p.start, p.end); err != nil {
			t.Fatalf("AddPeriod(%s) failed: %v", p.id, err)
		}
		tsID := "ts-" + p.id
		if err := b.AddTimeseries(tsID, p.id, 1, 1, 87660); err != nil {
			t.Fatalf("AddTimeseries(%s) failed: %v", tsID, err)
		}
		if err := b.AddTimepoint("tp-"+p.id, tsID, ""); err != nil {
			t.Fatalf("AddTimepoint failed: %v", err)
		}
	}
	h, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return h
}

func testTech(retirementAge int) domain.Technology {
	return domain.Technology{
		ID:            "gas-ct",
		Category:      domain.CategoryDispatchable,
		RetirementAge: retirementAge,
	}
}

func newTestLedger(t *testing.T, retirementAge int) *Ledger {
	t.Helper()
	h := threeDecades(t)
	l, err := NewLedger(h,
		[]domain.Asset{{ID: "plant-1", TechnologyID: "gas-ct"}},
		[]domain.Technology{testTech(retirementAge)},
	)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	return l
}

func TestOperationalPeriods_MidPeriodBuild(t *testing.T) {
	// Built 2025, retires 2045: first counted in the 2030s (the first
	// period starting at or after the build year), through the 2040s
	// (first period whose end boundary reaches 2045).
	l := newTestLedger(t, 20)
	b, err := l.RegisterPredetermined("plant-1", 2025, 100)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}

	periods, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	if len(periods) != 2 || periods[0].ID != "2030s" || periods[1].ID != "2040s" {
		t.Errorf("expected {2030s, 2040s}, got %v", periods)
	}
}

func TestOperationalPeriods_Idempotent(t *testing.T) {
	l := newTestLedger(t, 20)
	b, err := l.RegisterPredetermined("plant-1", 2025, 100)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}

	first, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	second, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("results differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestOperationalPeriods_RetirementOnBoundary(t *testing.T) {
	// Built 2020, retires exactly at the 2030s end boundary (2039): the
	// build serves through the 2030s and not beyond.
	l := newTestLedger(t, 19)
	b, err := l.RegisterPredetermined("plant-1", 2020, 50)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}

	periods, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	if len(periods) != 2 || periods[0].ID != "2020s" || periods[1].ID != "2030s" {
		t.Errorf("expected {2020s, 2030s}, got %v", periods)
	}
}

func TestOperationalPeriods_RetiredBeforeStudy(t *testing.T) {
	// Built 1990, retires 2010, study starts 2020: contributes nothing,
	// but is not an error.
	l := newTestLedger(t, 20)
	b, err := l.RegisterPredetermined("plant-1", 1990, 75)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}
	if b.EndYear != 2010 {
		t.Errorf("expected raw end year 2010, got %d", b.EndYear)
	}

	periods, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	if len(periods) != 0 {
		t.Errorf("expected empty operational set, got %v", periods)
	}

	cap, err := l.CapacityInPeriod("plant-1", "2020s")
	if err != nil {
		t.Fatalf("CapacityInPeriod failed: %v", err)
	}
	if cap != 0 {
		t.Errorf("expected zero capacity, got %v", cap)
	}
}

func TestOperationalPeriods_RetirementBeyondHorizon(t *testing.T) {
	// Built 2040 with a 40-year life: serves through the last period.
	l := newTestLedger(t, 40)
	b, err := l.RegisterPredetermined("plant-1", 2040, 10)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}
	periods, err := l.OperationalPeriods(b.ID)
	if err != nil {
		t.Fatalf("OperationalPeriods failed: %v", err)
	}
	if len(periods) != 1 || periods[0].ID != "2040s" {
		t.Errorf("expected {2040s}, got %v", periods)
	}
}

func TestCapacityInPeriod_SumsBuildVintages(t *testing.T) {
	l := newTestLedger(t, 30)
	if _, err := l.RegisterPredetermined("plant-1", 2020, 100); err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}
	builds, err := l.RegisterCandidateVintages("plant-1", "2030s")
	if err != nil {
		t.Fatalf("RegisterCandidateVintages failed: %v", err)
	}

	// Candidate not yet decided: counts as zero.
	cap, err := l.CapacityInPeriod("plant-1", "2030s")
	if err != nil {
		t.Fatalf("CapacityInPeriod failed: %v", err)
	}
	if cap != 100 {
		t.Errorf("expected 100 MW before decision, got %v", cap)
	}

	if err := l.SetCandidateCapacity(builds[0].ID, 40); err != nil {
		t.Fatalf("SetCandidateCapacity failed: %v", err)
	}
	cap, err = l.CapacityInPeriod("plant-1", "2030s")
	if err != nil {
		t.Fatalf("CapacityInPeriod failed: %v", err)
	}
	if cap != 140 {
		t.Errorf("expected 140 MW after decision, got %v", cap)
	}

	// 2020 build (30-year life, retires 2050) plus the 2030 candidate
	// both reach the 2040s.
	cap, err = l.CapacityInPeriod("plant-1", "2040s")
	if err != nil {
		t.Fatalf("CapacityInPeriod failed: %v", err)
	}
	if cap != 140 {
		t.Errorf("expected 140 MW in 2040s, got %v", cap)
	}
}

func TestSetCandidateCapacity_PredeterminedRejected(t *testing.T) {
	l := newTestLedger(t, 20)
	b, err := l.RegisterPredetermined("plant-1", 2020, 100)
	if err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}
	if err := l.SetCandidateCapacity(b.ID, 50); err == nil {
		t.Error("expected error when setting capacity of a predetermined build")
	}
}

func TestRegister_UnknownAsset(t *testing.T) {
	l := newTestLedger(t, 20)
	if _, err := l.RegisterPredetermined("nope", 2020, 1); err == nil {
		t.Error("expected error for unknown asset")
	}
	if _, err := l.RegisterCandidateVintages("nope", "2020s"); err == nil {
		t.Error("expected error for unknown asset")
	}
}

func TestRegister_DuplicateBuild(t *testing.T) {
	l := newTestLedger(t, 20)
	if _, err := l.RegisterPredetermined("plant-1", 2020, 1); err != nil {
		t.Fatalf("RegisterPredetermined failed: %v", err)
	}
	_, err := l.RegisterPredetermined("plant-1", 2020, 2)
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError for duplicate build, got %T: %v", err, err)
	}
}

func TestNewLedger_BadInput(t *testing.T) {
	h := threeDecades(t)

	_, err := NewLedger(h,
		[]domain.Asset{{ID: "a", TechnologyID: "missing"}},
		[]domain.Technology{testTech(20)},
	)
	if err == nil {
		t.Error("expected error for unknown technology reference")
	}

	badTech := testTech(20)
	badTech.Category = "hamster-wheel"
	_, err = NewLedger(h, nil, []domain.Technology{badTech})
	if err == nil {
		t.Error("expected error for unknown category")
	}

	zeroAge := testTech(0)
	_, err = NewLedger(h, nil, []domain.Technology{zeroAge})
	if err == nil {
		t.Error("expected error for non-positive retirement age")
	}
}

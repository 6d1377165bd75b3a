package reporting

import (
	"context"
	"sort"
	"time"

	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/solver"
	"grid-expansion-lab/internal/storage"
)

// Generator produces reports from a solved model and the stored run record.
type Generator struct {
	runStore storage.RunStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.RunStore) *Generator {
	return &Generator{
		runStore: runStore,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete run report. The model must carry the final
// iteration's capacity decisions and dispatch; sol is that iteration's
// solution.
func (g *Generator) Generate(ctx context.Context, runID string, m *model.Model, sol *solver.Solution) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	costs, err := g.generateCostBreakdown(m)
	if err != nil {
		return nil, err
	}

	capacity, err := g.generateCapacityDecisions(m)
	if err != nil {
		return nil, err
	}

	periods, err := g.generatePeriodSummaries(m)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:       g.now(),
		RunID:             run.RunID,
		Scenario:          run.Scenario,
		Converged:         run.Converged,
		Iterations:        run.Iterations,
		ObjectiveNPV:      run.Objective,
		CostBreakdown:     costs,
		CapacityDecisions: capacity,
		PeriodSummaries:   periods,
		Marginals:         generateMarginals(sol),
		Unserved:          generateUnserved(sol),
	}, nil
}

// generateCostBreakdown evaluates the cost terms and attributes shares of
// the total.
func (g *Generator) generateCostBreakdown(m *model.Model) ([]CostRow, error) {
	total, breakdown, err := m.Costs.TotalCost()
	if err != nil {
		return nil, err
	}

	rows := make([]CostRow, 0, len(breakdown))
	for term, npv := range breakdown {
		row := CostRow{Term: term, NPV: npv}
		if total != 0 {
			row.SharePct = npv / total * 100
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Term < rows[j].Term })
	return rows, nil
}

// generateCapacityDecisions builds sorted rows for every build on the books.
func (g *Generator) generateCapacityDecisions(m *model.Model) ([]CapacityRow, error) {
	builds := m.Builds.Builds()
	rows := make([]CapacityRow, 0, len(builds))

	for _, b := range builds {
		tech, err := m.Builds.TechnologyOf(b.AssetID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, CapacityRow{
			BuildID:      b.ID,
			AssetID:      b.AssetID,
			TechnologyID: tech.ID,
			BuildYear:    b.BuildYear,
			Kind:         string(b.Kind),
			CapacityMW:   b.CapacityMW(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AssetID != rows[j].AssetID {
			return rows[i].AssetID < rows[j].AssetID
		}
		return rows[i].BuildYear < rows[j].BuildYear
	})
	return rows, nil
}

// generatePeriodSummaries computes per-period peak demand and installed
// capacity.
func (g *Generator) generatePeriodSummaries(m *model.Model) ([]PeriodRow, error) {
	periods := m.Hierarchy.Periods()
	rows := make([]PeriodRow, 0, len(periods))

	for _, p := range periods {
		peak, err := m.PeakDemand(p.ID)
		if err != nil {
			return nil, err
		}

		installed := 0.0
		for _, a := range m.Builds.Assets() {
			capacity, err := m.Builds.CapacityInPeriod(a.ID, p.ID)
			if err != nil {
				return nil, err
			}
			installed += capacity
		}

		rows = append(rows, PeriodRow{
			PeriodID:     p.ID,
			StartYear:    p.StartYear,
			EndYear:      p.EndYear,
			PeakDemandMW: peak,
			InstalledMW:  installed,
		})
	}

	// Periods() is already ordered by start year.
	return rows, nil
}

// generateMarginals builds sorted marginal-cost rows from a solution.
func generateMarginals(sol *solver.Solution) []MarginalRow {
	if sol == nil {
		return nil
	}

	rows := make([]MarginalRow, 0, len(sol.MarginalCost))
	for tpID, cost := range sol.MarginalCost {
		rows = append(rows, MarginalRow{TimepointID: tpID, CostPerMWh: cost})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TimepointID < rows[j].TimepointID })
	return rows
}

// generateUnserved builds sorted unserved-demand rows from a solution.
func generateUnserved(sol *solver.Solution) []UnservedRow {
	if sol == nil {
		return nil
	}

	rows := make([]UnservedRow, 0, len(sol.UnservedMW))
	for tpID, mw := range sol.UnservedMW {
		rows = append(rows, UnservedRow{TimepointID: tpID, UnservedMW: mw})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TimepointID < rows[j].TimepointID })
	return rows
}

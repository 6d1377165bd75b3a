package solver

import (
	"context"
	"sort"

	"grid-expansion-lab/internal/dispatch"
	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/financial"
	"grid-expansion-lab/internal/lifecycle"
	"grid-expansion-lab/internal/model"
)

// Greedy is a deterministic heuristic solver. Capacity: walk periods in
// order and, where firm capacity falls short of peak demand, size the
// cheapest candidate vintage of the period to cover the gap. Dispatch: run
// must-run envelopes at their pinned level, then fill residual load in
// variable-cost merit order.
//
// The result is feasible and reproducible, not optimal.
type Greedy struct{}

var _ Solver = (*Greedy)(nil)

// NewGreedy returns the heuristic solver.
func NewGreedy() *Greedy { return &Greedy{} }

// Solve sizes candidate builds, dispatches every timepoint, and evaluates
// the objective. The model is left carrying the decisions.
func (g *Greedy) Solve(ctx context.Context, m *model.Model) (*Solution, error) {
	sol := &Solution{
		CapacityMW:   make(map[string]float64),
		DispatchMW:   make(map[string]map[string]float64),
		MarginalCost: make(map[string]float64),
		UnservedMW:   make(map[string]float64),
	}

	if err := g.sizeCandidates(ctx, m, sol); err != nil {
		return nil, err
	}
	if err := g.dispatch(ctx, m, sol); err != nil {
		return nil, err
	}

	objective, _, err := m.Costs.TotalCost()
	if err != nil {
		return nil, err
	}
	sol.Objective = objective
	return sol, nil
}

// firmFraction is the MW of dependable output per MW of nameplate capacity:
// the outage derating, further scaled for variable assets by their worst
// capacity factor across the period.
func (g *Greedy) firmFraction(m *model.Model, assetID, periodID string) (float64, error) {
	tech, err := m.Builds.TechnologyOf(assetID)
	if err != nil {
		return 0, err
	}
	avail := dispatch.Availability(tech)
	if tech.Category != domain.CategoryVariable {
		return avail, nil
	}
	tps, err := m.Hierarchy.TimepointsIn(periodID)
	if err != nil {
		return 0, err
	}
	worst := 1.0
	for _, tp := range tps {
		cf, err := m.Envelopes.CapacityFactor(assetID, tp.ID)
		if err != nil {
			return 0, err
		}
		if cf < worst {
			worst = cf
		}
	}
	if worst < 0 {
		worst = 0
	}
	return avail * worst, nil
}

// candidateCost ranks candidates by annualized dollars per firm MW.
func (g *Greedy) candidateCost(m *model.Model, b *lifecycle.Build) (float64, error) {
	tech, err := m.Builds.TechnologyOf(b.AssetID)
	if err != nil {
		return 0, err
	}
	crf, err := financial.CapitalRecoveryFactor(m.Financials.Params().InterestRate, tech.RetirementAge)
	if err != nil {
		return 0, err
	}
	return tech.OvernightCost*crf + tech.FixedOM, nil
}

func (g *Greedy) sizeCandidates(ctx context.Context, m *model.Model, sol *Solution) error {
	// Undecided candidates count as zero capacity, so deciding period by
	// period lets earlier vintages serve later deficits.
	for _, b := range m.Builds.CandidateBuilds() {
		if !b.Decided() {
			if err := m.Builds.SetCandidateCapacity(b.ID, 0); err != nil {
				return err
			}
		}
		sol.CapacityMW[b.ID] = b.CapacityMW()
	}

	for _, p := range m.Hierarchy.Periods() {
		if err := ctx.Err(); err != nil {
			return err
		}
		peak, err := m.PeakDemand(p.ID)
		if err != nil {
			return err
		}
		firm := 0.0
		for _, a := range m.Builds.Assets() {
			capacity, err := m.Builds.CapacityInPeriod(a.ID, p.ID)
			if err != nil {
				return err
			}
			if capacity == 0 {
				continue
			}
			frac, err := g.firmFraction(m, a.ID, p.ID)
			if err != nil {
				return err
			}
			firm += capacity * frac
		}
		deficit := peak - firm
		if deficit <= 0 {
			continue
		}

		vintages := g.vintagesIn(m, p)
		sort.Slice(vintages, func(i, j int) bool {
			ci, _ := g.candidateCost(m, vintages[i])
			cj, _ := g.candidateCost(m, vintages[j])
			if ci != cj {
				return ci < cj
			}
			return vintages[i].AssetID < vintages[j].AssetID
		})
		for _, b := range vintages {
			frac, err := g.firmFraction(m, b.AssetID, p.ID)
			if err != nil {
				return err
			}
			if frac <= 0 {
				continue
			}
			add := deficit / frac
			if err := m.Builds.SetCandidateCapacity(b.ID, b.CapacityMW()+add); err != nil {
				return err
			}
			sol.CapacityMW[b.ID] = b.CapacityMW()
			deficit = 0
			break
		}
		// Residual deficit surfaces as unserved energy during dispatch.
	}
	return nil
}

// vintagesIn returns the candidate builds commissioned at the period start.
func (g *Greedy) vintagesIn(m *model.Model, p domain.Period) []*lifecycle.Build {
	var out []*lifecycle.Build
	for _, b := range m.Builds.CandidateBuilds() {
		if b.BuildYear == p.StartYear {
			out = append(out, b)
		}
	}
	return out
}

func (g *Greedy) dispatch(ctx context.Context, m *model.Model, sol *Solution) error {
	m.ClearDispatch()
	assets := m.Builds.Assets()
	for _, tp := range m.Hierarchy.Timepoints() {
		if err := ctx.Err(); err != nil {
			return err
		}
		demand, err := m.Demand(tp.ID)
		if err != nil {
			return err
		}

		// Must-run capacity dispatches at its pinned level regardless of
		// demand; any excess is treated as absorbed elsewhere.
		residual := demand
		type flexible struct {
			assetID    string
			upper      float64
			variableOM float64
		}
		var flex []flexible
		for _, a := range assets {
			env, err := m.Envelopes.For(a.ID, tp.ID)
			if err != nil {
				return err
			}
			switch env.Kind {
			case dispatch.KindFixed:
				g.record(m, sol, a.ID, tp.ID, env.UpperMW)
				residual -= env.UpperMW
			default:
				if env.UpperMW > 0 {
					tech, err := m.Builds.TechnologyOf(a.ID)
					if err != nil {
						return err
					}
					flex = append(flex, flexible{a.ID, env.UpperMW, tech.VariableOM})
				}
			}
		}
		if residual < 0 {
			residual = 0
		}

		sort.Slice(flex, func(i, j int) bool {
			if flex[i].variableOM != flex[j].variableOM {
				return flex[i].variableOM < flex[j].variableOM
			}
			return flex[i].assetID < flex[j].assetID
		})
		marginal := 0.0
		for _, f := range flex {
			if residual <= 0 {
				break
			}
			take := f.upper
			if take > residual {
				take = residual
			}
			g.record(m, sol, f.assetID, tp.ID, take)
			residual -= take
			marginal = f.variableOM
		}
		sol.MarginalCost[tp.ID] = marginal
		if residual > 1e-9 {
			sol.UnservedMW[tp.ID] = residual
		}
	}
	return nil
}

func (g *Greedy) record(m *model.Model, sol *Solution, assetID, tpID string, powerMW float64) {
	m.SetDispatch(assetID, tpID, powerMW)
	byTP := sol.DispatchMW[assetID]
	if byTP == nil {
		byTP = make(map[string]float64)
		sol.DispatchMW[assetID] = byTP
	}
	byTP[tpID] = powerMW
}

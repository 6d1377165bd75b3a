// Package costing folds per-period and per-timepoint cost streams into one
// net-present-value objective.
//
// Cost terms are registered as closures over model state. Period-scoped terms
// are annual dollar streams repeated across a period; timepoint-scoped terms
// are dollar-per-hour rates at one timepoint. Each scope carries its own
// discount factor, so a term is folded to the base year exactly once.
package costing

import (
	"sort"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/financial"
	"grid-expansion-lab/internal/timescale"
)

// PeriodCostFunc returns an undiscounted annual cost in dollars per year for
// a period, evaluated against current model state.
type PeriodCostFunc func(periodID string) (float64, error)

// TimepointCostFunc returns an undiscounted cost rate in dollars per hour at
// a timepoint, evaluated against current model state.
type TimepointCostFunc func(timepointID string) (float64, error)

type periodTerm struct {
	name string
	fn   PeriodCostFunc
}

type timepointTerm struct {
	name string
	fn   TimepointCostFunc
}

// Aggregator registers cost terms and evaluates the total objective.
type Aggregator struct {
	hier   *timescale.Hierarchy
	engine *financial.Engine

	periodTerms    []periodTerm
	timepointTerms []timepointTerm
	names          map[string]struct{}
}

// NewAggregator creates an aggregator over a hierarchy and its financial
// engine.
func NewAggregator(h *timescale.Hierarchy, e *financial.Engine) *Aggregator {
	return &Aggregator{
		hier:   h,
		engine: e,
		names:  make(map[string]struct{}),
	}
}

// RegisterPeriodCost adds an annual cost stream. Term names must be unique
// across both scopes.
func (a *Aggregator) RegisterPeriodCost(name string, fn PeriodCostFunc) error {
	if err := a.claim(name, fn == nil); err != nil {
		return err
	}
	a.periodTerms = append(a.periodTerms, periodTerm{name: name, fn: fn})
	return nil
}

// RegisterTimepointCost adds a per-timepoint cost rate. Term names must be
// unique across both scopes.
func (a *Aggregator) RegisterTimepointCost(name string, fn TimepointCostFunc) error {
	if err := a.claim(name, fn == nil); err != nil {
		return err
	}
	a.timepointTerms = append(a.timepointTerms, timepointTerm{name: name, fn: fn})
	return nil
}

func (a *Aggregator) claim(name string, nilFn bool) error {
	if name == "" {
		return domain.Configf("cost term with empty name")
	}
	if nilFn {
		return domain.Configf("cost term %q: nil evaluator", name)
	}
	if _, dup := a.names[name]; dup {
		return domain.Configf("cost term %q: already registered", name)
	}
	a.names[name] = struct{}{}
	return nil
}

// TermNames returns all registered term names sorted lexically.
func (a *Aggregator) TermNames() []string {
	out := make([]string, 0, len(a.names))
	for n := range a.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Breakdown is the discounted contribution of each term, keyed by name.
type Breakdown map[string]float64

// TotalCost evaluates every registered term against current model state and
// returns the NPV objective in base-year dollars plus a per-term breakdown.
// Terms are evaluated in sorted name order so the float accumulation is
// independent of registration order.
func (a *Aggregator) TotalCost() (float64, Breakdown, error) {
	byName := make(Breakdown, len(a.names))

	pt := append([]periodTerm(nil), a.periodTerms...)
	sort.Slice(pt, func(i, j int) bool { return pt[i].name < pt[j].name })
	for _, term := range pt {
		sum := 0.0
		for _, p := range a.hier.Periods() {
			annual, err := term.fn(p.ID)
			if err != nil {
				return 0, nil, domain.Domainf("cost term %q at period %q: %v", term.name, p.ID, err)
			}
			factor, err := a.engine.PeriodFactor(p.ID)
			if err != nil {
				return 0, nil, err
			}
			sum += annual * factor
		}
		byName[term.name] = sum
	}

	tt := append([]timepointTerm(nil), a.timepointTerms...)
	sort.Slice(tt, func(i, j int) bool { return tt[i].name < tt[j].name })
	for _, term := range tt {
		sum := 0.0
		for _, tp := range a.hier.Timepoints() {
			rate, err := term.fn(tp.ID)
			if err != nil {
				return 0, nil, domain.Domainf("cost term %q at timepoint %q: %v", term.name, tp.ID, err)
			}
			factor, err := a.engine.TimepointFactor(tp.ID)
			if err != nil {
				return 0, nil, err
			}
			sum += rate * factor
		}
		byName[term.name] = sum
	}

	total := 0.0
	for _, name := range a.TermNames() {
		total += byName[name]
	}
	return total, byName, nil
}

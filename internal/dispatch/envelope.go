// Package dispatch derives the per-(asset, timepoint) dispatch envelope from
// installed capacity, outage derating, and exogenous capacity factors.
//
// Baseload and flexible-baseload assets are derated by both forced and
// scheduled outages and must run at exactly their derated capacity. Variable
// assets are derated by forced outages only and capped by their
// weather-driven capacity factor. Dispatchable assets are derated by forced
// outages only and can run anywhere between zero and the derated capacity.
package dispatch

import (
	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/lifecycle"
	"grid-expansion-lab/internal/timescale"
)

// Capacity factors must lie in the open interval (-1, 2). Solar thermal
// auxiliary loads can push a factor slightly negative; diffuse light can
// push solar above 1.
const (
	MinCapacityFactor = -1.0
	MaxCapacityFactor = 2.0
)

// Kind describes how the dispatch decision is constrained by the envelope.
type Kind string

// Envelope kinds
const (
	// KindFixed forces dispatch to equal the upper bound exactly.
	KindFixed Kind = "fixed"
	// KindUpperBounded allows dispatch anywhere in [Lower, Upper].
	KindUpperBounded Kind = "upper_bounded"
)

// Envelope is the dispatch bound for one asset in one timepoint.
type Envelope struct {
	AssetID      string
	TimepointID  string
	Kind         Kind
	LowerMW      float64
	UpperMW      float64
	Availability float64 // outage-derated fraction of nameplate capacity
}

// Availability returns the outage derating for a technology category.
// Baseload and flexible baseload lose both forced and scheduled outage time;
// the other categories are assumed to take scheduled maintenance off-peak.
func Availability(tech domain.Technology) float64 {
	switch tech.Category {
	case domain.CategoryBaseload, domain.CategoryFlexibleBaseload:
		return (1 - tech.ForcedOutageRate) * (1 - tech.ScheduledOutageRate)
	default:
		return 1 - tech.ForcedOutageRate
	}
}

// EnvelopeSet computes envelopes against a ledger and a capacity-factor
// lookup. It is a derived view: it holds no state of its own beyond the
// capacity factors, so envelopes always reflect the ledger's current
// capacity decisions.
type EnvelopeSet struct {
	hier    *timescale.Hierarchy
	ledger  *lifecycle.Ledger
	factors map[string]map[string]float64 // asset id → timepoint id → factor
}

// NewEnvelopeSet validates the supplied capacity factors and returns a set.
// Factors may only reference variable assets and must lie in the open
// interval (MinCapacityFactor, MaxCapacityFactor).
func NewEnvelopeSet(h *timescale.Hierarchy, l *lifecycle.Ledger, factors []domain.CapacityFactorPoint) (*EnvelopeSet, error) {
	s := &EnvelopeSet{
		hier:    h,
		ledger:  l,
		factors: make(map[string]map[string]float64),
	}
	for _, f := range factors {
		tech, err := l.TechnologyOf(f.AssetID)
		if err != nil {
			return nil, err
		}
		if tech.Category != domain.CategoryVariable {
			return nil, domain.Configf("capacity factor for %q: technology %q is not variable", f.AssetID, tech.ID)
		}
		if _, err := h.Timepoint(f.TimepointID); err != nil {
			return nil, err
		}
		if f.Factor <= MinCapacityFactor || f.Factor >= MaxCapacityFactor {
			return nil, domain.Configf("capacity factor for %q at %q: %v outside (%v, %v)",
				f.AssetID, f.TimepointID, f.Factor, MinCapacityFactor, MaxCapacityFactor)
		}
		m := s.factors[f.AssetID]
		if m == nil {
			m = make(map[string]float64)
			s.factors[f.AssetID] = m
		}
		if _, dup := m[f.TimepointID]; dup {
			return nil, domain.Configf("capacity factor for %q at %q: duplicate entry", f.AssetID, f.TimepointID)
		}
		m[f.TimepointID] = f.Factor
	}
	return s, nil
}

// CapacityFactor returns the exogenous factor for a variable asset at a
// timepoint.
func (s *EnvelopeSet) CapacityFactor(assetID, timepointID string) (float64, error) {
	f, ok := s.factors[assetID][timepointID]
	if !ok {
		return 0, domain.Configf("asset %q: no capacity factor for timepoint %q", assetID, timepointID)
	}
	return f, nil
}

// For computes the envelope for an asset in a timepoint. Zero capacity in
// the timepoint's period yields a zero-bound envelope, not an error; an
// asset whose technology category is unknown, or a variable asset with no
// capacity factor for the timepoint, is a ConfigError.
func (s *EnvelopeSet) For(assetID, timepointID string) (Envelope, error) {
	tech, err := s.ledger.TechnologyOf(assetID)
	if err != nil {
		return Envelope{}, err
	}
	if !tech.Category.Valid() {
		return Envelope{}, domain.Configf("asset %q: technology %q has no registered category", assetID, tech.ID)
	}
	period, err := s.hier.PeriodOf(timepointID)
	if err != nil {
		return Envelope{}, err
	}
	capacity, err := s.ledger.CapacityInPeriod(assetID, period.ID)
	if err != nil {
		return Envelope{}, err
	}

	avail := Availability(tech)
	env := Envelope{
		AssetID:      assetID,
		TimepointID:  timepointID,
		Availability: avail,
	}
	switch tech.Category {
	case domain.CategoryBaseload, domain.CategoryFlexibleBaseload:
		// No curtailment freedom: dispatch equals derated capacity.
		env.Kind = KindFixed
		env.UpperMW = capacity * avail
		env.LowerMW = env.UpperMW
	case domain.CategoryVariable:
		factor, ok := s.factors[assetID][timepointID]
		if !ok {
			return Envelope{}, domain.Configf("asset %q: no capacity factor for timepoint %q", assetID, timepointID)
		}
		env.Kind = KindUpperBounded
		env.UpperMW = capacity * avail * factor
		env.LowerMW = 0
	case domain.CategoryDispatchable:
		env.Kind = KindUpperBounded
		env.UpperMW = capacity * avail
		env.LowerMW = 0
	}
	return env, nil
}

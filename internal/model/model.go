// Package model composes the planning subsystems into one mutable model
// instance: the time hierarchy, financial engine, build ledger, dispatch
// envelopes, demand series, and the cost aggregator with the standard cost
// terms registered over them.
package model

import (
	"grid-expansion-lab/internal/costing"
	"grid-expansion-lab/internal/dispatch"
	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/financial"
	"grid-expansion-lab/internal/lifecycle"
	"grid-expansion-lab/internal/timescale"
)

// Standard cost term names.
const (
	TermCapitalRecovery = "capital_recovery"
	TermFixedOM         = "fixed_om"
	TermVariableOM      = "variable_om"
)

// Model is the complete in-memory planning model. The ledger's capacity
// decisions and the dispatch values are the mutable state; everything else
// is fixed input.
type Model struct {
	Hierarchy  *timescale.Hierarchy
	Financials *financial.Engine
	Builds     *lifecycle.Ledger
	Envelopes  *dispatch.EnvelopeSet
	Costs      *costing.Aggregator

	demand   map[string]float64            // timepoint id → MW
	dispatch map[string]map[string]float64 // asset id → timepoint id → MW
}

// New assembles a model and registers the standard cost terms. Demand must
// cover every timepoint in the hierarchy exactly once.
func New(h *timescale.Hierarchy, e *financial.Engine, l *lifecycle.Ledger, env *dispatch.EnvelopeSet, demand []domain.DemandPoint) (*Model, error) {
	m := &Model{
		Hierarchy:  h,
		Financials: e,
		Builds:     l,
		Envelopes:  env,
		Costs:      costing.NewAggregator(h, e),
		demand:     make(map[string]float64, len(demand)),
		dispatch:   make(map[string]map[string]float64),
	}
	for _, d := range demand {
		if _, err := h.Timepoint(d.TimepointID); err != nil {
			return nil, err
		}
		if d.DemandMW < 0 {
			return nil, domain.Configf("demand at %q: negative value %v", d.TimepointID, d.DemandMW)
		}
		if _, dup := m.demand[d.TimepointID]; dup {
			return nil, domain.Configf("demand at %q: duplicate entry", d.TimepointID)
		}
		m.demand[d.TimepointID] = d.DemandMW
	}
	for _, tp := range h.Timepoints() {
		if _, ok := m.demand[tp.ID]; !ok {
			return nil, domain.Configf("no demand for timepoint %q", tp.ID)
		}
	}
	if err := m.registerStandardCosts(); err != nil {
		return nil, err
	}
	return m, nil
}

// Demand returns the load in MW at a timepoint.
func (m *Model) Demand(timepointID string) (float64, error) {
	d, ok := m.demand[timepointID]
	if !ok {
		return 0, domain.Configf("no demand for timepoint %q", timepointID)
	}
	return d, nil
}

// SetDemand replaces the load at a timepoint. Demand-response evaluation
// hooks call this between solves.
func (m *Model) SetDemand(timepointID string, demandMW float64) error {
	if _, ok := m.demand[timepointID]; !ok {
		return domain.Configf("no demand for timepoint %q", timepointID)
	}
	if demandMW < 0 {
		return domain.Configf("negative demand %v for timepoint %q", demandMW, timepointID)
	}
	m.demand[timepointID] = demandMW
	return nil
}

// PeakDemand returns the highest load across a period's timepoints.
func (m *Model) PeakDemand(periodID string) (float64, error) {
	tps, err := m.Hierarchy.TimepointsIn(periodID)
	if err != nil {
		return 0, err
	}
	peak := 0.0
	for _, tp := range tps {
		if d := m.demand[tp.ID]; d > peak {
			peak = d
		}
	}
	return peak, nil
}

// SetDispatch records the power output of an asset at a timepoint. The
// solver writes these; the variable cost term and the reports read them.
func (m *Model) SetDispatch(assetID, timepointID string, powerMW float64) {
	tp := m.dispatch[assetID]
	if tp == nil {
		tp = make(map[string]float64)
		m.dispatch[assetID] = tp
	}
	tp[timepointID] = powerMW
}

// Dispatch returns the recorded output of an asset at a timepoint, zero if
// none has been set.
func (m *Model) Dispatch(assetID, timepointID string) float64 {
	return m.dispatch[assetID][timepointID]
}

// ClearDispatch drops all recorded dispatch, keeping capacity decisions.
func (m *Model) ClearDispatch() {
	m.dispatch = make(map[string]map[string]float64)
}

// registerStandardCosts wires the three canonical cost streams:
//
//	capital_recovery  annualized overnight cost of every operational build
//	fixed_om          capacity-proportional fixed operating cost
//	variable_om       dispatch-proportional operating cost rate
func (m *Model) registerStandardCosts() error {
	if err := m.Costs.RegisterPeriodCost(TermCapitalRecovery, func(periodID string) (float64, error) {
		p, err := m.Hierarchy.Period(periodID)
		if err != nil {
			return 0, err
		}
		rate := m.Financials.Params().InterestRate
		sum := 0.0
		for _, b := range m.Builds.Builds() {
			serving, err := m.Builds.OperationalIn(b.ID, p.ID)
			if err != nil {
				return 0, err
			}
			if !serving {
				continue
			}
			tech, err := m.Builds.TechnologyOf(b.AssetID)
			if err != nil {
				return 0, err
			}
			crf, err := financial.CapitalRecoveryFactor(rate, tech.RetirementAge)
			if err != nil {
				return 0, err
			}
			sum += b.CapacityMW() * tech.OvernightCost * crf
		}
		return sum, nil
	}); err != nil {
		return err
	}

	if err := m.Costs.RegisterPeriodCost(TermFixedOM, func(periodID string) (float64, error) {
		sum := 0.0
		for _, a := range m.Builds.Assets() {
			capacity, err := m.Builds.CapacityInPeriod(a.ID, periodID)
			if err != nil {
				return 0, err
			}
			tech, err := m.Builds.TechnologyOf(a.ID)
			if err != nil {
				return 0, err
			}
			sum += capacity * tech.FixedOM
		}
		return sum, nil
	}); err != nil {
		return err
	}

	return m.Costs.RegisterTimepointCost(TermVariableOM, func(timepointID string) (float64, error) {
		sum := 0.0
		for _, a := range m.Builds.Assets() {
			power := m.Dispatch(a.ID, timepointID)
			if power == 0 {
				continue
			}
			tech, err := m.Builds.TechnologyOf(a.ID)
			if err != nil {
				return 0, err
			}
			sum += power * tech.VariableOM
		}
		return sum, nil
	})
}

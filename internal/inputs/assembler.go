// Package inputs assembles a runnable model from scenario data in storage.
//
// Assembly follows the dependency order of the subsystems: financial
// parameters and the time hierarchy first, then the asset portfolio and its
// builds, then capacity factors and demand. Any referential problem surfaces
// as a ConfigError naming the offending record.
package inputs

import (
	"context"
	"fmt"

	"grid-expansion-lab/internal/dispatch"
	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/financial"
	"grid-expansion-lab/internal/lifecycle"
	"grid-expansion-lab/internal/model"
	"grid-expansion-lab/internal/storage"
	"grid-expansion-lab/internal/timescale"
)

// Stores bundles every store the assembler reads from.
type Stores struct {
	Periods         storage.PeriodStore
	Timeseries      storage.TimeseriesStore
	Timepoints      storage.TimepointStore
	Technologies    storage.TechnologyStore
	Assets          storage.AssetStore
	Builds          storage.PredeterminedBuildStore
	Vintages        storage.CandidateVintageStore
	Financials      storage.FinancialStore
	Demand          storage.DemandStore
	CapacityFactors storage.CapacityFactorStore
}

// Assembler loads one scenario and produces a model.
type Assembler struct {
	stores   Stores
	scenario string
}

// NewAssembler creates an assembler for a scenario.
func NewAssembler(stores Stores, scenario string) *Assembler {
	return &Assembler{stores: stores, scenario: scenario}
}

// Assemble reads the scenario from storage and builds the model. The
// returned ledger already carries predetermined builds and candidate
// vintages; candidate capacities are left to the solver.
func (a *Assembler) Assemble(ctx context.Context) (*model.Model, error) {
	fin, err := a.stores.Financials.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load financials for scenario %q: %w", a.scenario, err)
	}

	hier, err := a.assembleHierarchy(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := financial.NewEngine(hier, financial.Params{
		BaseFinancialYear: fin.BaseFinancialYear,
		InterestRate:      fin.InterestRate,
		DiscountRate:      fin.DiscountRate,
	})
	if err != nil {
		return nil, err
	}

	ledger, err := a.assembleLedger(ctx, hier)
	if err != nil {
		return nil, err
	}

	factorRows, err := a.stores.CapacityFactors.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load capacity factors: %w", err)
	}
	factors := make([]domain.CapacityFactorPoint, 0, len(factorRows))
	for _, f := range factorRows {
		factors = append(factors, *f)
	}
	envelopes, err := dispatch.NewEnvelopeSet(hier, ledger, factors)
	if err != nil {
		return nil, err
	}

	demandRows, err := a.stores.Demand.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load demand: %w", err)
	}
	demand := make([]domain.DemandPoint, 0, len(demandRows))
	for _, d := range demandRows {
		demand = append(demand, *d)
	}

	return model.New(hier, engine, ledger, envelopes, demand)
}

// assembleHierarchy loads periods, series, and timepoints into a validated
// hierarchy. Timepoints are added in stored ordinal order so ordinals
// survive the storage round trip.
func (a *Assembler) assembleHierarchy(ctx context.Context) (*timescale.Hierarchy, error) {
	b := timescale.NewBuilder()

	periods, err := a.stores.Periods.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	if len(periods) == 0 {
		return nil, domain.Configf("scenario %q has no periods", a.scenario)
	}
	for _, p := range periods {
		if err := b.AddPeriod(p.ID, p.StartYear, p.EndYear); err != nil {
			return nil, err
		}
	}

	series, err := a.stores.Timeseries.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load timeseries: %w", err)
	}
	for _, ts := range series {
		if err := b.AddTimeseries(ts.ID, ts.PeriodID, ts.HoursPerTimepoint, ts.TimepointCount, ts.ScaleToPeriod); err != nil {
			return nil, err
		}
	}

	points, err := a.stores.Timepoints.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load timepoints: %w", err)
	}
	for _, tp := range points {
		if err := b.AddTimepoint(tp.ID, tp.TimeseriesID, tp.Label); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

func (a *Assembler) assembleLedger(ctx context.Context, hier *timescale.Hierarchy) (*lifecycle.Ledger, error) {
	techRows, err := a.stores.Technologies.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load technologies: %w", err)
	}
	techs := make([]domain.Technology, 0, len(techRows))
	for _, tech := range techRows {
		techs = append(techs, *tech)
	}

	assetRows, err := a.stores.Assets.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	assets := make([]domain.Asset, 0, len(assetRows))
	for _, asset := range assetRows {
		assets = append(assets, *asset)
	}

	ledger, err := lifecycle.NewLedger(hier, assets, techs)
	if err != nil {
		return nil, err
	}

	builds, err := a.stores.Builds.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load predetermined builds: %w", err)
	}
	for _, b := range builds {
		if _, err := ledger.RegisterPredetermined(b.AssetID, b.BuildYear, b.CapacityMW); err != nil {
			return nil, err
		}
	}

	vintages, err := a.stores.Vintages.GetByScenario(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("load candidate vintages: %w", err)
	}
	for _, v := range vintages {
		if _, err := ledger.RegisterCandidateVintages(v.AssetID, v.PeriodID); err != nil {
			return nil, err
		}
	}

	return ledger, nil
}

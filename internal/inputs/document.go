package inputs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/observability"
)

// ScenarioDocument is the JSON file format for a full scenario: every input
// table in one self-contained file. Timepoint order in the file defines
// ordinal order.
type ScenarioDocument struct {
	Scenario   string        `json:"scenario"`
	Financials FinancialsDoc `json:"financials"`

	Periods             []PeriodDoc         `json:"periods"`
	Timeseries          []TimeseriesDoc     `json:"timeseries"`
	Timepoints          []TimepointDoc      `json:"timepoints"`
	Technologies        []TechnologyDoc     `json:"technologies"`
	Assets              []AssetDoc          `json:"assets"`
	PredeterminedBuilds []BuildDoc          `json:"predetermined_builds"`
	CandidateVintages   []VintageDoc        `json:"candidate_vintages"`
	Demand              []DemandDoc         `json:"demand"`
	CapacityFactors     []CapacityFactorDoc `json:"capacity_factors,omitempty"`
}

// FinancialsDoc mirrors domain.ScenarioFinancials.
type FinancialsDoc struct {
	BaseFinancialYear int     `json:"base_financial_year"`
	InterestRate      float64 `json:"interest_rate"`
	DiscountRate      float64 `json:"discount_rate"`
}

// PeriodDoc mirrors domain.Period.
type PeriodDoc struct {
	ID        string `json:"id"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// TimeseriesDoc mirrors domain.Timeseries.
type TimeseriesDoc struct {
	ID                string  `json:"id"`
	PeriodID          string  `json:"period_id"`
	HoursPerTimepoint float64 `json:"hours_per_timepoint"`
	TimepointCount    int     `json:"timepoint_count"`
	ScaleToPeriod     float64 `json:"scale_to_period"`
}

// TimepointDoc mirrors domain.Timepoint. The ordinal comes from file order.
type TimepointDoc struct {
	ID           string `json:"id"`
	TimeseriesID string `json:"timeseries_id"`
	Label        string `json:"label,omitempty"`
}

// TechnologyDoc mirrors domain.Technology.
type TechnologyDoc struct {
	ID                  string  `json:"id"`
	Category            string  `json:"category"`
	RetirementAge       int     `json:"retirement_age"`
	ForcedOutageRate    float64 `json:"forced_outage_rate"`
	ScheduledOutageRate float64 `json:"scheduled_outage_rate"`
	OvernightCost       float64 `json:"overnight_cost"`
	FixedOM             float64 `json:"fixed_om"`
	VariableOM          float64 `json:"variable_om"`
}

// AssetDoc mirrors domain.Asset.
type AssetDoc struct {
	ID           string `json:"id"`
	TechnologyID string `json:"technology_id"`
}

// BuildDoc mirrors domain.PredeterminedBuild.
type BuildDoc struct {
	AssetID    string  `json:"asset_id"`
	BuildYear  int     `json:"build_year"`
	CapacityMW float64 `json:"capacity_mw"`
}

// VintageDoc mirrors domain.CandidateVintage.
type VintageDoc struct {
	AssetID  string `json:"asset_id"`
	PeriodID string `json:"period_id"`
}

// DemandDoc mirrors domain.DemandPoint.
type DemandDoc struct {
	TimepointID string  `json:"timepoint_id"`
	DemandMW    float64 `json:"demand_mw"`
}

// CapacityFactorDoc mirrors domain.CapacityFactorPoint.
type CapacityFactorDoc struct {
	AssetID     string  `json:"asset_id"`
	TimepointID string  `json:"timepoint_id"`
	Factor      float64 `json:"factor"`
}

// LoadScenarioFile reads and parses a scenario document.
func LoadScenarioFile(path string) (*ScenarioDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var doc ScenarioDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if doc.Scenario == "" {
		return nil, domain.Configf("scenario file %q: missing scenario name", path)
	}
	if len(doc.Periods) == 0 {
		return nil, domain.Configf("scenario file %q: no periods", path)
	}
	return &doc, nil
}

// Seed inserts the document's records into the stores, table by table in
// dependency order. Referential validation happens at assembly, not here.
func (d *ScenarioDocument) Seed(ctx context.Context, stores Stores) error {
	err := stores.Financials.Insert(ctx, &domain.ScenarioFinancials{
		Scenario:          d.Scenario,
		BaseFinancialYear: d.Financials.BaseFinancialYear,
		InterestRate:      d.Financials.InterestRate,
		DiscountRate:      d.Financials.DiscountRate,
	})
	observability.RecordIngest("scenario_financials", 1, err)
	if err != nil {
		return fmt.Errorf("seed financials: %w", err)
	}

	for _, p := range d.Periods {
		err := stores.Periods.Insert(ctx, d.Scenario, &domain.Period{
			ID: p.ID, StartYear: p.StartYear, EndYear: p.EndYear,
		})
		if err != nil {
			observability.RecordIngest("periods", 0, err)
			return fmt.Errorf("seed period %q: %w", p.ID, err)
		}
	}
	observability.RecordIngest("periods", len(d.Periods), nil)

	for _, ts := range d.Timeseries {
		err := stores.Timeseries.Insert(ctx, d.Scenario, &domain.Timeseries{
			ID:                ts.ID,
			PeriodID:          ts.PeriodID,
			HoursPerTimepoint: ts.HoursPerTimepoint,
			TimepointCount:    ts.TimepointCount,
			ScaleToPeriod:     ts.ScaleToPeriod,
		})
		if err != nil {
			observability.RecordIngest("timeseries", 0, err)
			return fmt.Errorf("seed timeseries %q: %w", ts.ID, err)
		}
	}
	observability.RecordIngest("timeseries", len(d.Timeseries), nil)

	// File order defines ordinals within each series.
	ordinals := make(map[string]int)
	points := make([]*domain.Timepoint, 0, len(d.Timepoints))
	for _, tp := range d.Timepoints {
		points = append(points, &domain.Timepoint{
			ID:           tp.ID,
			TimeseriesID: tp.TimeseriesID,
			Label:        tp.Label,
			Ordinal:      ordinals[tp.TimeseriesID],
		})
		ordinals[tp.TimeseriesID]++
	}
	if len(points) > 0 {
		err := stores.Timepoints.InsertBulk(ctx, d.Scenario, points)
		observability.RecordIngest("timepoints", len(points), err)
		if err != nil {
			return fmt.Errorf("seed timepoints: %w", err)
		}
	}

	for _, tech := range d.Technologies {
		err := stores.Technologies.Insert(ctx, d.Scenario, &domain.Technology{
			ID:                  tech.ID,
			Category:            domain.Category(tech.Category),
			RetirementAge:       tech.RetirementAge,
			ForcedOutageRate:    tech.ForcedOutageRate,
			ScheduledOutageRate: tech.ScheduledOutageRate,
			OvernightCost:       tech.OvernightCost,
			FixedOM:             tech.FixedOM,
			VariableOM:          tech.VariableOM,
		})
		if err != nil {
			observability.RecordIngest("technologies", 0, err)
			return fmt.Errorf("seed technology %q: %w", tech.ID, err)
		}
	}
	observability.RecordIngest("technologies", len(d.Technologies), nil)

	for _, a := range d.Assets {
		err := stores.Assets.Insert(ctx, d.Scenario, &domain.Asset{
			ID: a.ID, TechnologyID: a.TechnologyID,
		})
		if err != nil {
			observability.RecordIngest("assets", 0, err)
			return fmt.Errorf("seed asset %q: %w", a.ID, err)
		}
	}
	observability.RecordIngest("assets", len(d.Assets), nil)

	for _, b := range d.PredeterminedBuilds {
		err := stores.Builds.Insert(ctx, d.Scenario, &domain.PredeterminedBuild{
			AssetID: b.AssetID, BuildYear: b.BuildYear, CapacityMW: b.CapacityMW,
		})
		if err != nil {
			observability.RecordIngest("predetermined_builds", 0, err)
			return fmt.Errorf("seed predetermined build %s/%d: %w", b.AssetID, b.BuildYear, err)
		}
	}
	observability.RecordIngest("predetermined_builds", len(d.PredeterminedBuilds), nil)

	for _, v := range d.CandidateVintages {
		err := stores.Vintages.Insert(ctx, d.Scenario, &domain.CandidateVintage{
			AssetID: v.AssetID, PeriodID: v.PeriodID,
		})
		if err != nil {
			observability.RecordIngest("candidate_vintages", 0, err)
			return fmt.Errorf("seed candidate vintage %s/%s: %w", v.AssetID, v.PeriodID, err)
		}
	}
	observability.RecordIngest("candidate_vintages", len(d.CandidateVintages), nil)

	if len(d.Demand) > 0 {
		demand := make([]*domain.DemandPoint, 0, len(d.Demand))
		for _, p := range d.Demand {
			demand = append(demand, &domain.DemandPoint{TimepointID: p.TimepointID, DemandMW: p.DemandMW})
		}
		err := stores.Demand.InsertBulk(ctx, d.Scenario, demand)
		observability.RecordIngest("demand_points", len(demand), err)
		if err != nil {
			return fmt.Errorf("seed demand: %w", err)
		}
	}

	if len(d.CapacityFactors) > 0 {
		factors := make([]*domain.CapacityFactorPoint, 0, len(d.CapacityFactors))
		for _, f := range d.CapacityFactors {
			factors = append(factors, &domain.CapacityFactorPoint{
				AssetID: f.AssetID, TimepointID: f.TimepointID, Factor: f.Factor,
			})
		}
		err := stores.CapacityFactors.InsertBulk(ctx, d.Scenario, factors)
		observability.RecordIngest("capacity_factors", len(factors), err)
		if err != nil {
			return fmt.Errorf("seed capacity factors: %w", err)
		}
	}

	return nil
}

// Package financial converts interest and discount rates plus the time
// hierarchy into the present-value coefficients every cost term multiplies
// by.
//
// All dollar amounts in the model are real dollars of the base financial
// year. Costs incurred during a period are treated as a uniform annual
// stream: PeriodFactor collapses that stream to a lump sum at the period
// start and discounts it back to the base year; TimepointFactor further
// scales by the hours a timepoint represents within one year, so hourly unit
// costs multiply directly into NPV.
package financial

import (
	"math"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/timescale"
)

// CapitalRecoveryFactor converts a loan principal into a uniform annual
// payment over nYears at the given interest rate.
func CapitalRecoveryFactor(rate float64, nYears int) (float64, error) {
	if err := checkRateYears("capital recovery factor", rate, nYears); err != nil {
		return 0, err
	}
	return rate / (1 - math.Pow(1+rate, -float64(nYears))), nil
}

// UniformSeriesToPresentValue converts a uniform series of annual payments
// over nYears into a present value at the start of the series. It is the
// algebraic inverse of CapitalRecoveryFactor at equal rate and years.
func UniformSeriesToPresentValue(rate float64, nYears int) (float64, error) {
	if err := checkRateYears("uniform series to present value", rate, nYears); err != nil {
		return 0, err
	}
	return (1 - math.Pow(1+rate, -float64(nYears))) / rate, nil
}

// FutureToPresentValue discounts a value nYears in the future back to the
// present.
func FutureToPresentValue(rate float64, nYears int) (float64, error) {
	if rate <= 0 {
		return 0, domain.Domainf("future to present value: rate must be positive, got %v", rate)
	}
	return math.Pow(1+rate, -float64(nYears)), nil
}

// PresentToFutureValue compounds a present value nYears into the future. It
// is the inverse of FutureToPresentValue at equal rate and years.
func PresentToFutureValue(rate float64, nYears int) (float64, error) {
	if rate <= 0 {
		return 0, domain.Domainf("present to future value: rate must be positive, got %v", rate)
	}
	return math.Pow(1+rate, float64(nYears)), nil
}

func checkRateYears(op string, rate float64, nYears int) error {
	if rate <= 0 {
		return domain.Domainf("%s: rate must be positive, got %v", op, rate)
	}
	if nYears <= 0 {
		return domain.Domainf("%s: years must be positive, got %d", op, nYears)
	}
	return nil
}

// Params are the rate inputs of the engine. DiscountRate defaults to
// InterestRate when zero.
type Params struct {
	BaseFinancialYear int     // NPV reference year
	InterestRate      float64 // real interest rate on loans
	DiscountRate      float64 // real rate for bringing future dollars to the base year
}

// Engine holds precomputed discount coefficients for every period and
// timepoint of a hierarchy. The coefficients are pure functions of the
// hierarchy and the rate parameters, so they are computed once and reused by
// every cost term.
type Engine struct {
	params          Params
	periodFactors   map[string]float64
	timepointFactor map[string]float64
}

// NewEngine validates params and precomputes all factors.
func NewEngine(h *timescale.Hierarchy, params Params) (*Engine, error) {
	if params.BaseFinancialYear <= 0 {
		return nil, domain.Configf("financial engine: base financial year must be positive, got %d", params.BaseFinancialYear)
	}
	if params.InterestRate <= 0 {
		return nil, domain.Configf("financial engine: interest rate must be positive, got %v", params.InterestRate)
	}
	if params.DiscountRate == 0 {
		params.DiscountRate = params.InterestRate
	}
	if params.DiscountRate <= 0 {
		return nil, domain.Configf("financial engine: discount rate must be positive, got %v", params.DiscountRate)
	}

	e := &Engine{
		params:          params,
		periodFactors:   make(map[string]float64),
		timepointFactor: make(map[string]float64),
	}
	for _, p := range h.Periods() {
		annuity, err := UniformSeriesToPresentValue(params.DiscountRate, p.LengthYears())
		if err != nil {
			return nil, err
		}
		toBase, err := FutureToPresentValue(params.DiscountRate, p.StartYear-params.BaseFinancialYear)
		if err != nil {
			return nil, err
		}
		e.periodFactors[p.ID] = annuity * toBase
	}
	for _, tp := range h.Timepoints() {
		period, err := h.PeriodOf(tp.ID)
		if err != nil {
			return nil, err
		}
		wy, err := h.WeightInYear(tp.ID)
		if err != nil {
			return nil, err
		}
		e.timepointFactor[tp.ID] = e.periodFactors[period.ID] * wy
	}
	return e, nil
}

// Params returns the engine's rate parameters with defaults applied.
func (e *Engine) Params() Params {
	return e.params
}

// PeriodFactor converts a uniform annual cost stream paid throughout the
// period into a lump-sum NPV at the base financial year.
func (e *Engine) PeriodFactor(periodID string) (float64, error) {
	f, ok := e.periodFactors[periodID]
	if !ok {
		return 0, domain.Configf("period factor: unknown period %q", periodID)
	}
	return f, nil
}

// TimepointFactor converts an hourly unit cost incurred in the timepoint
// into its NPV contribution at the base financial year.
func (e *Engine) TimepointFactor(timepointID string) (float64, error) {
	f, ok := e.timepointFactor[timepointID]
	if !ok {
		return 0, domain.Configf("timepoint factor: unknown timepoint %q", timepointID)
	}
	return f, nil
}

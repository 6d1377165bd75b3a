// Package timescale defines the three-level time hierarchy for investment
// and dispatch decisions: periods → timeseries → timepoints.
//
// A Period is a multi-year investment interval. A Timeseries is a block of
// consecutive timepoints that represents a larger share of its period via a
// replication factor. A Timepoint is the finest-grained unit of dispatch and
// carries an hour-weight within its period:
//
//	weight        = hours_per_timepoint * scale_to_period
//	weight_in_year = weight / period_length_years
//
// The weights of all timepoints in a period must reconcile with the calendar
// length of that period within 1%, because they scale every variable cost in
// the objective. Build enforces this and the hierarchy is immutable
// afterward.
package timescale

import (
	"math"
	"sort"

	"grid-expansion-lab/internal/domain"
)

// WeightTolerance is the allowed relative mismatch between the summed
// timepoint weights of a period and the period's calendar hours.
const WeightTolerance = 0.01

// Hierarchy is the validated, immutable time structure of a model.
type Hierarchy struct {
	periods     []domain.Period
	periodByID  map[string]domain.Period
	seriesByID  map[string]domain.Timeseries
	seriesOrder []string
	tpByID      map[string]domain.Timepoint
	tpsBySeries map[string][]domain.Timepoint
	tpsByPeriod map[string][]domain.Timepoint
}

// Builder accumulates periods, timeseries and timepoints, then validates
// them into a Hierarchy. All Add methods fail once Build has been called.
type Builder struct {
	periods     []domain.Period
	periodByID  map[string]struct{}
	seriesByID  map[string]domain.Timeseries
	seriesOrder []string
	tpByID      map[string]struct{}
	tpsBySeries map[string][]domain.Timepoint
	built       bool
}

// NewBuilder creates an empty hierarchy builder.
func NewBuilder() *Builder {
	return &Builder{
		periodByID:  make(map[string]struct{}),
		seriesByID:  make(map[string]domain.Timeseries),
		tpByID:      make(map[string]struct{}),
		tpsBySeries: make(map[string][]domain.Timepoint),
	}
}

// AddPeriod registers an investment period.
func (b *Builder) AddPeriod(id string, startYear, endYear int) error {
	if b.built {
		return domain.Configf("add period %q: hierarchy already built", id)
	}
	if id == "" {
		return domain.Configf("add period: empty id")
	}
	if endYear < startYear {
		return domain.Configf("period %q: end year %d before start year %d", id, endYear, startYear)
	}
	if _, exists := b.periodByID[id]; exists {
		return domain.Configf("period %q: duplicate id", id)
	}
	b.periodByID[id] = struct{}{}
	b.periods = append(b.periods, domain.Period{ID: id, StartYear: startYear, EndYear: endYear})
	return nil
}

// AddTimeseries registers a representative timeseries within a known period.
func (b *Builder) AddTimeseries(id, periodID string, hoursPerTimepoint float64, timepointCount int, scaleToPeriod float64) error {
	if b.built {
		return domain.Configf("add timeseries %q: hierarchy already built", id)
	}
	if id == "" {
		return domain.Configf("add timeseries: empty id")
	}
	if _, exists := b.periodByID[periodID]; !exists {
		return domain.Configf("timeseries %q: unknown period %q", id, periodID)
	}
	if _, exists := b.seriesByID[id]; exists {
		return domain.Configf("timeseries %q: duplicate id", id)
	}
	if hoursPerTimepoint <= 0 {
		return domain.Configf("timeseries %q: hours per timepoint must be positive, got %v", id, hoursPerTimepoint)
	}
	if timepointCount <= 0 {
		return domain.Configf("timeseries %q: timepoint count must be positive, got %d", id, timepointCount)
	}
	if scaleToPeriod <= 0 {
		return domain.Configf("timeseries %q: scale to period must be positive, got %v", id, scaleToPeriod)
	}
	b.seriesByID[id] = domain.Timeseries{
		ID:                id,
		PeriodID:          periodID,
		HoursPerTimepoint: hoursPerTimepoint,
		TimepointCount:    timepointCount,
		ScaleToPeriod:     scaleToPeriod,
	}
	b.seriesOrder = append(b.seriesOrder, id)
	return nil
}

// AddTimepoint registers a timepoint in a known timeseries. Call order
// defines the ordinal position within the series, which in turn defines the
// circular previous-timepoint relation.
func (b *Builder) AddTimepoint(id, timeseriesID, label string) error {
	if b.built {
		return domain.Configf("add timepoint %q: hierarchy already built", id)
	}
	if id == "" {
		return domain.Configf("add timepoint: empty id")
	}
	if _, exists := b.seriesByID[timeseriesID]; !exists {
		return domain.Configf("timepoint %q: unknown timeseries %q", id, timeseriesID)
	}
	if _, exists := b.tpByID[id]; exists {
		return domain.Configf("timepoint %q: duplicate id", id)
	}
	if label == "" {
		label = id
	}
	b.tpByID[id] = struct{}{}
	tp := domain.Timepoint{
		ID:           id,
		TimeseriesID: timeseriesID,
		Label:        label,
		Ordinal:      len(b.tpsBySeries[timeseriesID]),
	}
	b.tpsBySeries[timeseriesID] = append(b.tpsBySeries[timeseriesID], tp)
	return nil
}

// Build validates the accumulated structure and freezes it. Structural
// problems (no periods, declared timepoint counts not matching actual rows)
// are ConfigErrors; a weight-sum mismatch beyond WeightTolerance is a
// ValidationError naming the offending period with expected and actual hour
// totals.
func (b *Builder) Build() (*Hierarchy, error) {
	if b.built {
		return nil, domain.Configf("build: hierarchy already built")
	}
	if len(b.periods) == 0 {
		return nil, domain.Configf("build: no periods defined")
	}
	for _, id := range b.seriesOrder {
		ts := b.seriesByID[id]
		if got := len(b.tpsBySeries[id]); got != ts.TimepointCount {
			return nil, domain.Configf("timeseries %q: declared %d timepoints, got %d", id, ts.TimepointCount, got)
		}
	}

	h := &Hierarchy{
		periods:     make([]domain.Period, len(b.periods)),
		periodByID:  make(map[string]domain.Period, len(b.periods)),
		seriesByID:  make(map[string]domain.Timeseries, len(b.seriesByID)),
		seriesOrder: append([]string(nil), b.seriesOrder...),
		tpByID:      make(map[string]domain.Timepoint, len(b.tpByID)),
		tpsBySeries: make(map[string][]domain.Timepoint, len(b.tpsBySeries)),
		tpsByPeriod: make(map[string][]domain.Timepoint, len(b.periods)),
	}
	copy(h.periods, b.periods)
	sort.Slice(h.periods, func(i, j int) bool { return h.periods[i].StartYear < h.periods[j].StartYear })
	for _, p := range h.periods {
		h.periodByID[p.ID] = p
	}
	for id, ts := range b.seriesByID {
		h.seriesByID[id] = ts
	}
	for _, id := range h.seriesOrder {
		tps := append([]domain.Timepoint(nil), b.tpsBySeries[id]...)
		h.tpsBySeries[id] = tps
		periodID := h.seriesByID[id].PeriodID
		h.tpsByPeriod[periodID] = append(h.tpsByPeriod[periodID], tps...)
		for _, tp := range tps {
			h.tpByID[tp.ID] = tp
		}
	}

	// Weight-sum reconciliation per period. The check sums every timepoint
	// weight, so downstream variable-cost coefficients are known to cover
	// the full period length.
	for _, p := range h.periods {
		expected := p.LengthHours()
		actual := 0.0
		for _, tp := range h.tpsByPeriod[p.ID] {
			actual += h.mustWeight(tp)
		}
		if math.Abs(actual-expected) > WeightTolerance*expected {
			return nil, &domain.ValidationError{
				Subject:  "period " + p.ID,
				Expected: expected,
				Actual:   actual,
				Msg:      "sum of timepoint weights does not reconcile with period hours",
			}
		}
	}

	b.built = true
	return h, nil
}

func (h *Hierarchy) mustWeight(tp domain.Timepoint) float64 {
	ts := h.seriesByID[tp.TimeseriesID]
	return ts.HoursPerTimepoint * ts.ScaleToPeriod
}

// Periods returns all periods ordered by start year.
func (h *Hierarchy) Periods() []domain.Period {
	return append([]domain.Period(nil), h.periods...)
}

// FirstPeriod returns the earliest period. The hierarchy is never empty.
func (h *Hierarchy) FirstPeriod() domain.Period {
	return h.periods[0]
}

// Period returns the period with the given id.
func (h *Hierarchy) Period(id string) (domain.Period, error) {
	p, ok := h.periodByID[id]
	if !ok {
		return domain.Period{}, domain.Configf("unknown period %q", id)
	}
	return p, nil
}

// Series returns the timeseries with the given id.
func (h *Hierarchy) Series(id string) (domain.Timeseries, error) {
	ts, ok := h.seriesByID[id]
	if !ok {
		return domain.Timeseries{}, domain.Configf("unknown timeseries %q", id)
	}
	return ts, nil
}

// SeriesIn returns the timeseries belonging to a period, in insertion order.
func (h *Hierarchy) SeriesIn(periodID string) []domain.Timeseries {
	var out []domain.Timeseries
	for _, id := range h.seriesOrder {
		if h.seriesByID[id].PeriodID == periodID {
			out = append(out, h.seriesByID[id])
		}
	}
	return out
}

// Timepoint returns the timepoint with the given id.
func (h *Hierarchy) Timepoint(id string) (domain.Timepoint, error) {
	tp, ok := h.tpByID[id]
	if !ok {
		return domain.Timepoint{}, domain.Configf("unknown timepoint %q", id)
	}
	return tp, nil
}

// Timepoints returns every timepoint, grouped by series in insertion order.
func (h *Hierarchy) Timepoints() []domain.Timepoint {
	var out []domain.Timepoint
	for _, id := range h.seriesOrder {
		out = append(out, h.tpsBySeries[id]...)
	}
	return out
}

// TimepointsIn returns the timepoints of a period, grouped by series.
func (h *Hierarchy) TimepointsIn(periodID string) ([]domain.Timepoint, error) {
	if _, ok := h.periodByID[periodID]; !ok {
		return nil, domain.Configf("unknown period %q", periodID)
	}
	return append([]domain.Timepoint(nil), h.tpsByPeriod[periodID]...), nil
}

// TimepointsOf returns the ordered timepoints of a timeseries.
func (h *Hierarchy) TimepointsOf(timeseriesID string) []domain.Timepoint {
	return append([]domain.Timepoint(nil), h.tpsBySeries[timeseriesID]...)
}

// PeriodOf returns the period a timepoint belongs to.
func (h *Hierarchy) PeriodOf(timepointID string) (domain.Period, error) {
	tp, err := h.Timepoint(timepointID)
	if err != nil {
		return domain.Period{}, err
	}
	return h.periodByID[h.seriesByID[tp.TimeseriesID].PeriodID], nil
}

// Weight returns the hours a timepoint represents within its period.
func (h *Hierarchy) Weight(timepointID string) (float64, error) {
	tp, err := h.Timepoint(timepointID)
	if err != nil {
		return 0, err
	}
	return h.mustWeight(tp), nil
}

// WeightInYear returns the hours a timepoint represents within a single year
// of its period.
func (h *Hierarchy) WeightInYear(timepointID string) (float64, error) {
	tp, err := h.Timepoint(timepointID)
	if err != nil {
		return 0, err
	}
	period := h.periodByID[h.seriesByID[tp.TimeseriesID].PeriodID]
	return h.mustWeight(tp) / float64(period.LengthYears()), nil
}

// Previous returns the timepoint before the given one within its series.
// Series are treated as closed loops: the timepoint before the first is the
// last. This supports storage state-of-charge and ramp continuity without
// linking distinct series.
func (h *Hierarchy) Previous(timepointID string) (domain.Timepoint, error) {
	tp, err := h.Timepoint(timepointID)
	if err != nil {
		return domain.Timepoint{}, err
	}
	tps := h.tpsBySeries[tp.TimeseriesID]
	n := len(tps)
	return tps[(tp.Ordinal-1+n)%n], nil
}

package domain

// Timeseries represents a block of consecutive timepoints that stands in for
// a larger share of its period. A series could describe a median day, a peak
// day, or a full week; ScaleToPeriod replicates its actual duration up to the
// share of the period it represents.
// Corresponds to timeseries table in PostgreSQL.
type Timeseries struct {
	ID                string  // unique timeseries identifier
	PeriodID          string  // FK to periods
	HoursPerTimepoint float64 // duration of each timepoint in hours
	TimepointCount    int     // number of timepoints in the series
	ScaleToPeriod     float64 // replication factor up to the full period
}

// DurationHours returns the actual (unscaled) duration of the series.
func (ts Timeseries) DurationHours() float64 {
	return ts.HoursPerTimepoint * float64(ts.TimepointCount)
}

// Timepoint is the finest-grained unit of dispatch. Row order within a
// timeseries defines its ordinal position.
// Corresponds to timepoints table in PostgreSQL.
type Timepoint struct {
	ID           string // unique timepoint identifier
	TimeseriesID string // FK to timeseries
	Label        string // human-readable timestamp label, e.g. YYYYMMDDHH
	Ordinal      int    // position within its timeseries, starting at 0
}

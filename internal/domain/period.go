package domain

// HoursPerYear is the average number of hours in a calendar year (365.25
// days) rounded to the nearest integer. Every conversion between years and
// hours in the model goes through this constant.
const HoursPerYear = 8766.0

// Period represents a multi-year investment interval.
// Corresponds to periods table in PostgreSQL.
type Period struct {
	ID        string // unique period identifier
	StartYear int    // first calendar year of the period
	EndYear   int    // last calendar year of the period (inclusive)
}

// LengthYears returns the number of calendar years the period spans.
func (p Period) LengthYears() int {
	return p.EndYear - p.StartYear + 1
}

// LengthHours returns the period length in hours, using the average
// year length.
func (p Period) LengthHours() float64 {
	return float64(p.LengthYears()) * HoursPerYear
}

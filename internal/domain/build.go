package domain

// PredeterminedBuild is capacity that already exists before the study:
// immutable installed MW with an arbitrary historical build year.
// Corresponds to predetermined_builds table in PostgreSQL.
type PredeterminedBuild struct {
	AssetID    string  // FK to assets
	BuildYear  int     // year construction completed
	CapacityMW float64 // installed capacity, fixed
}

// CandidateVintage declares that new capacity of an asset may be built in a
// given period. The commissioning year of such a build is always the
// period's start year; the built MW is a solver decision.
// Corresponds to candidate_vintages table in PostgreSQL.
type CandidateVintage struct {
	AssetID  string // FK to assets
	PeriodID string // FK to periods
}

package domain

// Category describes the operational regime of a technology. The categories
// are mutually exclusive because they imply different dispatch envelopes.
type Category string

// Technology categories
const (
	// CategoryBaseload runs constantly at maximum available capacity.
	CategoryBaseload Category = "baseload"
	// CategoryFlexibleBaseload holds constant output within a day but can
	// vary it from day to day. Derated like baseload.
	CategoryFlexibleBaseload Category = "flexible_baseload"
	// CategoryVariable produces on a use-it-or-lose-it basis from an
	// exogenous resource (wind, solar).
	CategoryVariable Category = "variable"
	// CategoryDispatchable can be ramped freely between zero and its
	// derated capacity.
	CategoryDispatchable Category = "dispatchable"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBaseload, CategoryFlexibleBaseload, CategoryVariable, CategoryDispatchable:
		return true
	}
	return false
}

// Technology holds the per-technology attributes that stay constant over the
// study horizon.
// Corresponds to technologies table in PostgreSQL.
type Technology struct {
	ID                  string   // unique technology identifier
	Category            Category // operational regime
	RetirementAge       int      // years a build remains operational
	ForcedOutageRate    float64  // fraction of time down unexpectedly
	ScheduledOutageRate float64  // fraction of time down for maintenance
	OvernightCost       float64  // capital cost per MW of capacity
	FixedOM             float64  // fixed O&M per MW per year
	VariableOM          float64  // variable O&M per MWh dispatched
}

// Asset is a concrete site where capacity of one technology can exist or be
// built.
// Corresponds to assets table in PostgreSQL.
type Asset struct {
	ID           string // unique asset identifier
	TechnologyID string // FK to technologies
}

// Package lifecycle tracks asset builds and the periods they are operational
// in.
//
// A build is one (asset, build year) vintage: predetermined capacity that
// already exists, or a candidate decision scoped to a period's start year.
// The ledger derives each build's end year from its technology's retirement
// age and answers the two questions every other subsystem asks: which
// periods is this build operational in, and how much capacity does an asset
// have in a period. Both cost accrual and dispatch eligibility go through
// the same membership predicate, so a build can never accrue cost without
// being dispatchable or vice versa.
package lifecycle

import (
	"sort"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/idhash"
	"grid-expansion-lab/internal/timescale"
)

// BuildKind distinguishes existing capacity from investment decisions.
type BuildKind string

// Build kinds
const (
	KindPredetermined BuildKind = "predetermined"
	KindCandidate     BuildKind = "candidate"
)

// Build is one ledger entry: capacity of an asset commissioned in a given
// year.
type Build struct {
	ID        string
	AssetID   string
	BuildYear int
	Kind      BuildKind
	// EndYear is the start year of the last period the build serves in,
	// or the raw retirement year if that precedes the study entirely.
	EndYear int

	capacity   float64
	hasDecided bool // candidates start without a capacity decision
}

// CapacityMW returns the build's capacity. A candidate build without a
// solver decision yet reports zero.
func (b *Build) CapacityMW() float64 {
	if b.Kind == KindCandidate && !b.hasDecided {
		return 0
	}
	return b.capacity
}

// Decided reports whether the build has a capacity value: always true for
// predetermined builds.
func (b *Build) Decided() bool {
	return b.Kind == KindPredetermined || b.hasDecided
}

// Ledger holds assets, their technologies, and all registered builds.
type Ledger struct {
	hier      *timescale.Hierarchy
	assets    map[string]domain.Asset
	techs     map[string]domain.Technology
	builds    []*Build
	buildByID map[string]*Build
	byAsset   map[string][]*Build
}

// NewLedger creates a ledger over a validated hierarchy. Every asset must
// reference a known technology with a valid category and positive retirement
// age.
func NewLedger(h *timescale.Hierarchy, assets []domain.Asset, techs []domain.Technology) (*Ledger, error) {
	l := &Ledger{
		hier:      h,
		assets:    make(map[string]domain.Asset, len(assets)),
		techs:     make(map[string]domain.Technology, len(techs)),
		buildByID: make(map[string]*Build),
		byAsset:   make(map[string][]*Build),
	}
	for _, tech := range techs {
		if tech.ID == "" {
			return nil, domain.Configf("technology with empty id")
		}
		if _, dup := l.techs[tech.ID]; dup {
			return nil, domain.Configf("technology %q: duplicate id", tech.ID)
		}
		if !tech.Category.Valid() {
			return nil, domain.Configf("technology %q: unknown category %q", tech.ID, tech.Category)
		}
		if tech.RetirementAge <= 0 {
			return nil, domain.Configf("technology %q: retirement age must be positive, got %d", tech.ID, tech.RetirementAge)
		}
		if tech.ForcedOutageRate < 0 || tech.ForcedOutageRate > 1 {
			return nil, domain.Configf("technology %q: forced outage rate %v outside [0,1]", tech.ID, tech.ForcedOutageRate)
		}
		if tech.ScheduledOutageRate < 0 || tech.ScheduledOutageRate > 1 {
			return nil, domain.Configf("technology %q: scheduled outage rate %v outside [0,1]", tech.ID, tech.ScheduledOutageRate)
		}
		l.techs[tech.ID] = tech
	}
	for _, a := range assets {
		if a.ID == "" {
			return nil, domain.Configf("asset with empty id")
		}
		if _, dup := l.assets[a.ID]; dup {
			return nil, domain.Configf("asset %q: duplicate id", a.ID)
		}
		if _, ok := l.techs[a.TechnologyID]; !ok {
			return nil, domain.Configf("asset %q: unknown technology %q", a.ID, a.TechnologyID)
		}
		l.assets[a.ID] = a
	}
	return l, nil
}

// Asset returns the asset with the given id.
func (l *Ledger) Asset(id string) (domain.Asset, error) {
	a, ok := l.assets[id]
	if !ok {
		return domain.Asset{}, domain.Configf("unknown asset %q", id)
	}
	return a, nil
}

// Assets returns all assets ordered by id.
func (l *Ledger) Assets() []domain.Asset {
	out := make([]domain.Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TechnologyOf returns the technology of an asset.
func (l *Ledger) TechnologyOf(assetID string) (domain.Technology, error) {
	a, err := l.Asset(assetID)
	if err != nil {
		return domain.Technology{}, err
	}
	return l.techs[a.TechnologyID], nil
}

// endYear derives the last year of service for a build of the given asset.
//
// If retirement falls before the first modeled period begins, the raw
// arithmetic year is kept: the build is a retiring legacy asset that
// contributes nothing, which is valid input. Otherwise the build serves
// through the first period whose end boundary is at or after the retirement
// year (inclusive: retirement exactly on a period's end boundary keeps the
// build in that period), or through the last period if retirement lies
// beyond the study horizon.
func (l *Ledger) endYear(assetID string, buildYear int) (int, error) {
	tech, err := l.TechnologyOf(assetID)
	if err != nil {
		return 0, err
	}
	retires := buildYear + tech.RetirementAge
	periods := l.hier.Periods()
	if retires < periods[0].StartYear {
		return retires, nil
	}
	for _, p := range periods {
		if p.EndYear >= retires {
			return p.StartYear, nil
		}
	}
	return periods[len(periods)-1].StartYear, nil
}

// RegisterPredetermined records capacity that exists before the study. The
// capacity is a fixed datum, not a decision variable.
func (l *Ledger) RegisterPredetermined(assetID string, buildYear int, capacityMW float64) (*Build, error) {
	if capacityMW < 0 {
		return nil, domain.Configf("predetermined build for %q: negative capacity %v", assetID, capacityMW)
	}
	return l.register(assetID, buildYear, KindPredetermined, capacityMW, true)
}

// RegisterCandidateVintages declares that new capacity of an asset may be
// built in each of the given periods. The commissioning year is the period's
// start year; the capacity is left to the solver.
func (l *Ledger) RegisterCandidateVintages(assetID string, periodIDs ...string) ([]*Build, error) {
	builds := make([]*Build, 0, len(periodIDs))
	for _, pid := range periodIDs {
		p, err := l.hier.Period(pid)
		if err != nil {
			return nil, err
		}
		b, err := l.register(assetID, p.StartYear, KindCandidate, 0, false)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

func (l *Ledger) register(assetID string, buildYear int, kind BuildKind, capacityMW float64, decided bool) (*Build, error) {
	if _, err := l.Asset(assetID); err != nil {
		return nil, err
	}
	id := idhash.ComputeBuildID(assetID, buildYear, string(kind))
	if _, dup := l.buildByID[id]; dup {
		return nil, domain.Configf("build for asset %q in year %d (%s): already registered", assetID, buildYear, kind)
	}
	end, err := l.endYear(assetID, buildYear)
	if err != nil {
		return nil, err
	}
	b := &Build{
		ID:         id,
		AssetID:    assetID,
		BuildYear:  buildYear,
		Kind:       kind,
		EndYear:    end,
		capacity:   capacityMW,
		hasDecided: decided,
	}
	l.builds = append(l.builds, b)
	l.buildByID[id] = b
	l.byAsset[assetID] = append(l.byAsset[assetID], b)
	return b, nil
}

// Build returns a ledger entry by id.
func (l *Ledger) Build(id string) (*Build, error) {
	b, ok := l.buildByID[id]
	if !ok {
		return nil, domain.Configf("unknown build %q", id)
	}
	return b, nil
}

// Builds returns all ledger entries in registration order.
func (l *Ledger) Builds() []*Build {
	return append([]*Build(nil), l.builds...)
}

// CandidateBuilds returns the entries whose capacity is a solver decision,
// in registration order.
func (l *Ledger) CandidateBuilds() []*Build {
	var out []*Build
	for _, b := range l.builds {
		if b.Kind == KindCandidate {
			out = append(out, b)
		}
	}
	return out
}

// SetCandidateCapacity assigns a solver decision to a candidate build.
func (l *Ledger) SetCandidateCapacity(buildID string, capacityMW float64) error {
	b, err := l.Build(buildID)
	if err != nil {
		return err
	}
	if b.Kind != KindCandidate {
		return domain.Configf("build %q: capacity of a predetermined build is fixed", buildID)
	}
	if capacityMW < 0 {
		return domain.Domainf("build %q: negative capacity decision %v", buildID, capacityMW)
	}
	b.capacity = capacityMW
	b.hasDecided = true
	return nil
}

// operationalIn is the single membership predicate shared by cost accrual
// and dispatch eligibility: inclusive on both ends, comparing period start
// years against the build's build and end years.
func operationalIn(b *Build, p domain.Period) bool {
	return b.BuildYear <= p.StartYear && p.StartYear <= b.EndYear
}

// OperationalPeriods returns the ordered periods a build serves in. A build
// retired before the study begins yields an empty set without error.
func (l *Ledger) OperationalPeriods(buildID string) ([]domain.Period, error) {
	b, err := l.Build(buildID)
	if err != nil {
		return nil, err
	}
	var out []domain.Period
	for _, p := range l.hier.Periods() {
		if operationalIn(b, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// OperationalIn reports whether a build serves in a period.
func (l *Ledger) OperationalIn(buildID, periodID string) (bool, error) {
	b, err := l.Build(buildID)
	if err != nil {
		return false, err
	}
	p, err := l.hier.Period(periodID)
	if err != nil {
		return false, err
	}
	return operationalIn(b, p), nil
}

// CapacityInPeriod sums the capacity of all builds of an asset operational
// in the period. Candidate builds without a decision count as zero.
func (l *Ledger) CapacityInPeriod(assetID, periodID string) (float64, error) {
	if _, err := l.Asset(assetID); err != nil {
		return 0, err
	}
	p, err := l.hier.Period(periodID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, b := range l.byAsset[assetID] {
		if operationalIn(b, p) {
			total += b.CapacityMW()
		}
	}
	return total, nil
}

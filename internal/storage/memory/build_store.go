package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// PredeterminedBuildStore is an in-memory implementation of
// storage.PredeterminedBuildStore.
type PredeterminedBuildStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.PredeterminedBuild // scenario → "asset_id|build_year"
}

// NewPredeterminedBuildStore creates a new in-memory predetermined build store.
func NewPredeterminedBuildStore() *PredeterminedBuildStore {
	return &PredeterminedBuildStore{
		data: make(map[string]map[string]*domain.PredeterminedBuild),
	}
}

func predeterminedKey(b *domain.PredeterminedBuild) string {
	return fmt.Sprintf("%s|%d", b.AssetID, b.BuildYear)
}

// Insert adds a build. Returns ErrDuplicateKey if (scenario, asset_id, build_year) exists.
func (s *PredeterminedBuildStore) Insert(_ context.Context, scenario string, b *domain.PredeterminedBuild) error {
	if scenario == "" || b == nil || b.AssetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.data[scenario]
	if byKey == nil {
		byKey = make(map[string]*domain.PredeterminedBuild)
		s.data[scenario] = byKey
	}
	key := predeterminedKey(b)
	if _, exists := byKey[key]; exists {
		return storage.ErrDuplicateKey
	}

	buildCopy := *b
	byKey[key] = &buildCopy
	return nil
}

// GetByScenario retrieves all builds of a scenario, ordered by asset ID then
// build year ASC.
func (s *PredeterminedBuildStore) GetByScenario(_ context.Context, scenario string) ([]*domain.PredeterminedBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PredeterminedBuild
	for _, b := range s.data[scenario] {
		buildCopy := *b
		result = append(result, &buildCopy)
	}

	sortPredetermined(result)
	return result, nil
}

// GetByAsset retrieves the builds of one asset, ordered by build year ASC.
func (s *PredeterminedBuildStore) GetByAsset(_ context.Context, scenario, assetID string) ([]*domain.PredeterminedBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PredeterminedBuild
	for _, b := range s.data[scenario] {
		if b.AssetID == assetID {
			buildCopy := *b
			result = append(result, &buildCopy)
		}
	}

	sortPredetermined(result)
	return result, nil
}

func sortPredetermined(builds []*domain.PredeterminedBuild) {
	sort.Slice(builds, func(i, j int) bool {
		if builds[i].AssetID != builds[j].AssetID {
			return builds[i].AssetID < builds[j].AssetID
		}
		return builds[i].BuildYear < builds[j].BuildYear
	})
}

// Verify interface compliance at compile time.
var _ storage.PredeterminedBuildStore = (*PredeterminedBuildStore)(nil)

// CandidateVintageStore is an in-memory implementation of
// storage.CandidateVintageStore.
type CandidateVintageStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.CandidateVintage // scenario → "asset_id|period_id"
}

// NewCandidateVintageStore creates a new in-memory candidate vintage store.
func NewCandidateVintageStore() *CandidateVintageStore {
	return &CandidateVintageStore{
		data: make(map[string]map[string]*domain.CandidateVintage),
	}
}

// Insert adds a vintage. Returns ErrDuplicateKey if (scenario, asset_id, period_id) exists.
func (s *CandidateVintageStore) Insert(_ context.Context, scenario string, v *domain.CandidateVintage) error {
	if scenario == "" || v == nil || v.AssetID == "" || v.PeriodID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.data[scenario]
	if byKey == nil {
		byKey = make(map[string]*domain.CandidateVintage)
		s.data[scenario] = byKey
	}
	key := v.AssetID + "|" + v.PeriodID
	if _, exists := byKey[key]; exists {
		return storage.ErrDuplicateKey
	}

	vintageCopy := *v
	byKey[key] = &vintageCopy
	return nil
}

// GetByScenario retrieves all vintages of a scenario, ordered by asset ID
// then period ID ASC.
func (s *CandidateVintageStore) GetByScenario(_ context.Context, scenario string) ([]*domain.CandidateVintage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CandidateVintage
	for _, v := range s.data[scenario] {
		vintageCopy := *v
		result = append(result, &vintageCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AssetID != result[j].AssetID {
			return result[i].AssetID < result[j].AssetID
		}
		return result[i].PeriodID < result[j].PeriodID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.CandidateVintageStore = (*CandidateVintageStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// CapacityFactorStore is an in-memory implementation of storage.CapacityFactorStore.
type CapacityFactorStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.CapacityFactorPoint // scenario → "asset_id|timepoint_id"
}

// NewCapacityFactorStore creates a new in-memory capacity factor store.
func NewCapacityFactorStore() *CapacityFactorStore {
	return &CapacityFactorStore{
		data: make(map[string]map[string]*domain.CapacityFactorPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (scenario, asset_id, timepoint_id).
func (s *CapacityFactorStore) InsertBulk(_ context.Context, scenario string, points []*domain.CapacityFactorPoint) error {
	if scenario == "" {
		return storage.ErrInvalidInput
	}
	for _, p := range points {
		if p == nil || p.AssetID == "" || p.TimepointID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.data[scenario]
	if byKey == nil {
		byKey = make(map[string]*domain.CapacityFactorPoint)
		s.data[scenario] = byKey
	}

	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		key := p.AssetID + "|" + p.TimepointID
		if _, exists := byKey[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		byKey[p.AssetID+"|"+p.TimepointID] = &pointCopy
	}
	return nil
}

// GetByScenario retrieves all points of a scenario, ordered by asset ID then
// timepoint ID ASC.
func (s *CapacityFactorStore) GetByScenario(_ context.Context, scenario string) ([]*domain.CapacityFactorPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CapacityFactorPoint
	for _, p := range s.data[scenario] {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sortCapacityFactors(result)
	return result, nil
}

// GetByAsset retrieves the points of one asset, ordered by timepoint ID ASC.
func (s *CapacityFactorStore) GetByAsset(_ context.Context, scenario, assetID string) ([]*domain.CapacityFactorPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CapacityFactorPoint
	for _, p := range s.data[scenario] {
		if p.AssetID == assetID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sortCapacityFactors(result)
	return result, nil
}

func sortCapacityFactors(points []*domain.CapacityFactorPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].AssetID != points[j].AssetID {
			return points[i].AssetID < points[j].AssetID
		}
		return points[i].TimepointID < points[j].TimepointID
	})
}

// Verify interface compliance at compile time.
var _ storage.CapacityFactorStore = (*CapacityFactorStore)(nil)

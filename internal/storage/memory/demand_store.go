package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// DemandStore is an in-memory implementation of storage.DemandStore.
type DemandStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.DemandPoint // scenario → timepoint_id
}

// NewDemandStore creates a new in-memory demand store.
func NewDemandStore() *DemandStore {
	return &DemandStore{
		data: make(map[string]map[string]*domain.DemandPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (scenario, timepoint_id).
func (s *DemandStore) InsertBulk(_ context.Context, scenario string, points []*domain.DemandPoint) error {
	if scenario == "" {
		return storage.ErrInvalidInput
	}
	for _, p := range points {
		if p == nil || p.TimepointID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byTP := s.data[scenario]
	if byTP == nil {
		byTP = make(map[string]*domain.DemandPoint)
		s.data[scenario] = byTP
	}

	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if _, exists := byTP[p.TimepointID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[p.TimepointID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.TimepointID] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		byTP[p.TimepointID] = &pointCopy
	}
	return nil
}

// GetByScenario retrieves all points of a scenario, ordered by timepoint ID ASC.
func (s *DemandStore) GetByScenario(_ context.Context, scenario string) ([]*domain.DemandPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DemandPoint
	for _, p := range s.data[scenario] {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimepointID < result[j].TimepointID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DemandStore = (*DemandStore)(nil)

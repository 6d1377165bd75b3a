package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// TimepointStore is an in-memory implementation of storage.TimepointStore.
type TimepointStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Timepoint // scenario → timepoint_id
}

// NewTimepointStore creates a new in-memory timepoint store.
func NewTimepointStore() *TimepointStore {
	return &TimepointStore{
		data: make(map[string]map[string]*domain.Timepoint),
	}
}

// InsertBulk adds multiple timepoints. Fails entire batch on duplicate (scenario, id).
func (s *TimepointStore) InsertBulk(_ context.Context, scenario string, points []*domain.Timepoint) error {
	if scenario == "" {
		return storage.ErrInvalidInput
	}
	for _, tp := range points {
		if tp == nil || tp.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.data[scenario]
	if byID == nil {
		byID = make(map[string]*domain.Timepoint)
		s.data[scenario] = byID
	}

	// Validate the whole batch before writing any of it.
	seen := make(map[string]struct{}, len(points))
	for _, tp := range points {
		if _, exists := byID[tp.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[tp.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[tp.ID] = struct{}{}
	}

	for _, tp := range points {
		tpCopy := *tp
		byID[tp.ID] = &tpCopy
	}
	return nil
}

// GetByScenario retrieves all timepoints of a scenario, ordered by timeseries
// ID then ordinal ASC.
func (s *TimepointStore) GetByScenario(_ context.Context, scenario string) ([]*domain.Timepoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Timepoint
	for _, tp := range s.data[scenario] {
		tpCopy := *tp
		result = append(result, &tpCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimeseriesID != result[j].TimeseriesID {
			return result[i].TimeseriesID < result[j].TimeseriesID
		}
		return result[i].Ordinal < result[j].Ordinal
	})

	return result, nil
}

// GetByTimeseries retrieves the timepoints of one series, ordered by ordinal ASC.
func (s *TimepointStore) GetByTimeseries(_ context.Context, scenario, timeseriesID string) ([]*domain.Timepoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Timepoint
	for _, tp := range s.data[scenario] {
		if tp.TimeseriesID == timeseriesID {
			tpCopy := *tp
			result = append(result, &tpCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ordinal < result[j].Ordinal
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TimepointStore = (*TimepointStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// TimeseriesStore is an in-memory implementation of storage.TimeseriesStore.
type TimeseriesStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Timeseries // scenario → timeseries_id
}

// NewTimeseriesStore creates a new in-memory timeseries store.
func NewTimeseriesStore() *TimeseriesStore {
	return &TimeseriesStore{
		data: make(map[string]map[string]*domain.Timeseries),
	}
}

// Insert adds a new timeseries. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *TimeseriesStore) Insert(_ context.Context, scenario string, ts *domain.Timeseries) error {
	if scenario == "" || ts == nil || ts.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.data[scenario]
	if byID == nil {
		byID = make(map[string]*domain.Timeseries)
		s.data[scenario] = byID
	}
	if _, exists := byID[ts.ID]; exists {
		return storage.ErrDuplicateKey
	}

	tsCopy := *ts
	byID[ts.ID] = &tsCopy
	return nil
}

// GetByScenario retrieves all timeseries of a scenario, ordered by ID ASC.
func (s *TimeseriesStore) GetByScenario(_ context.Context, scenario string) ([]*domain.Timeseries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Timeseries
	for _, ts := range s.data[scenario] {
		tsCopy := *ts
		result = append(result, &tsCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByPeriod retrieves the timeseries attached to a period, ordered by ID ASC.
func (s *TimeseriesStore) GetByPeriod(_ context.Context, scenario, periodID string) ([]*domain.Timeseries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Timeseries
	for _, ts := range s.data[scenario] {
		if ts.PeriodID == periodID {
			tsCopy := *ts
			result = append(result, &tsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TimeseriesStore = (*TimeseriesStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// PeriodStore is an in-memory implementation of storage.PeriodStore.
type PeriodStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Period // scenario → period_id
}

// NewPeriodStore creates a new in-memory period store.
func NewPeriodStore() *PeriodStore {
	return &PeriodStore{
		data: make(map[string]map[string]*domain.Period),
	}
}

// Insert adds a new period. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *PeriodStore) Insert(_ context.Context, scenario string, p *domain.Period) error {
	if scenario == "" || p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.data[scenario]
	if byID == nil {
		byID = make(map[string]*domain.Period)
		s.data[scenario] = byID
	}
	if _, exists := byID[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	periodCopy := *p
	byID[p.ID] = &periodCopy
	return nil
}

// GetByID retrieves a period by its ID. Returns ErrNotFound if not exists.
func (s *PeriodStore) GetByID(_ context.Context, scenario, periodID string) (*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[scenario][periodID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	periodCopy := *p
	return &periodCopy, nil
}

// GetByScenario retrieves all periods of a scenario, ordered by start year ASC.
func (s *PeriodStore) GetByScenario(_ context.Context, scenario string) ([]*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Period
	for _, p := range s.data[scenario] {
		periodCopy := *p
		result = append(result, &periodCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartYear < result[j].StartYear
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PeriodStore = (*PeriodStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// TechnologyStore is an in-memory implementation of storage.TechnologyStore.
type TechnologyStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Technology // scenario → technology_id
}

// NewTechnologyStore creates a new in-memory technology store.
func NewTechnologyStore() *TechnologyStore {
	return &TechnologyStore{
		data: make(map[string]map[string]*domain.Technology),
	}
}

// Insert adds a new technology. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *TechnologyStore) Insert(_ context.Context, scenario string, tech *domain.Technology) error {
	if scenario == "" || tech == nil || tech.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.data[scenario]
	if byID == nil {
		byID = make(map[string]*domain.Technology)
		s.data[scenario] = byID
	}
	if _, exists := byID[tech.ID]; exists {
		return storage.ErrDuplicateKey
	}

	techCopy := *tech
	byID[tech.ID] = &techCopy
	return nil
}

// GetByID retrieves a technology by its ID. Returns ErrNotFound if not exists.
func (s *TechnologyStore) GetByID(_ context.Context, scenario, technologyID string) (*domain.Technology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tech, exists := s.data[scenario][technologyID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	techCopy := *tech
	return &techCopy, nil
}

// GetByScenario retrieves all technologies of a scenario, ordered by ID ASC.
func (s *TechnologyStore) GetByScenario(_ context.Context, scenario string) ([]*domain.Technology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Technology
	for _, tech := range s.data[scenario] {
		techCopy := *tech
		result = append(result, &techCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TechnologyStore = (*TechnologyStore)(nil)

package memory

import (
	"context"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// FinancialStore is an in-memory implementation of storage.FinancialStore.
type FinancialStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScenarioFinancials // keyed by scenario
}

// NewFinancialStore creates a new in-memory financial store.
func NewFinancialStore() *FinancialStore {
	return &FinancialStore{
		data: make(map[string]*domain.ScenarioFinancials),
	}
}

// Insert adds financial parameters. Returns ErrDuplicateKey if the scenario exists.
func (s *FinancialStore) Insert(_ context.Context, f *domain.ScenarioFinancials) error {
	if f == nil || f.Scenario == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[f.Scenario]; exists {
		return storage.ErrDuplicateKey
	}

	finCopy := *f
	s.data[f.Scenario] = &finCopy
	return nil
}

// GetByScenario retrieves the parameters of a scenario. Returns ErrNotFound if not exists.
func (s *FinancialStore) GetByScenario(_ context.Context, scenario string) (*domain.ScenarioFinancials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[scenario]
	if !exists {
		return nil, storage.ErrNotFound
	}

	finCopy := *f
	return &finCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.FinancialStore = (*FinancialStore)(nil)

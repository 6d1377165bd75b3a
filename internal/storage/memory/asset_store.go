package memory

import (
	"context"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// AssetStore is an in-memory implementation of storage.AssetStore.
type AssetStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Asset // scenario → asset_id
}

// NewAssetStore creates a new in-memory asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		data: make(map[string]map[string]*domain.Asset),
	}
}

// Insert adds a new asset. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *AssetStore) Insert(_ context.Context, scenario string, a *domain.Asset) error {
	if scenario == "" || a == nil || a.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.data[scenario]
	if byID == nil {
		byID = make(map[string]*domain.Asset)
		s.data[scenario] = byID
	}
	if _, exists := byID[a.ID]; exists {
		return storage.ErrDuplicateKey
	}

	assetCopy := *a
	byID[a.ID] = &assetCopy
	return nil
}

// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(_ context.Context, scenario, assetID string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[scenario][assetID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	assetCopy := *a
	return &assetCopy, nil
}

// GetByScenario retrieves all assets of a scenario, ordered by ID ASC.
func (s *AssetStore) GetByScenario(_ context.Context, scenario string) ([]*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Asset
	for _, a := range s.data[scenario] {
		assetCopy := *a
		result = append(result, &assetCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.AssetStore = (*AssetStore)(nil)

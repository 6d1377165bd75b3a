package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// DispatchResultStore is an in-memory implementation of storage.DispatchResultStore.
type DispatchResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DispatchResultPoint // keyed by "run_id|iteration|asset_id|timepoint_id"
}

// NewDispatchResultStore creates a new in-memory dispatch result store.
func NewDispatchResultStore() *DispatchResultStore {
	return &DispatchResultStore{
		data: make(map[string]*domain.DispatchResultPoint),
	}
}

func dispatchResultKey(p *domain.DispatchResultPoint) string {
	return fmt.Sprintf("%s|%d|%s|%s", p.RunID, p.Iteration, p.AssetID, p.TimepointID)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (run_id, iteration, asset_id, timepoint_id).
func (s *DispatchResultStore) InsertBulk(_ context.Context, points []*domain.DispatchResultPoint) error {
	for _, p := range points {
		if p == nil || p.RunID == "" || p.AssetID == "" || p.TimepointID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		key := dispatchResultKey(p)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[dispatchResultKey(p)] = &pointCopy
	}
	return nil
}

// GetByRunID retrieves all points of a run, ordered by iteration, asset ID,
// timepoint ID ASC.
func (s *DispatchResultStore) GetByRunID(_ context.Context, runID string) ([]*domain.DispatchResultPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DispatchResultPoint
	for _, p := range s.data {
		if p.RunID == runID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sortDispatchResults(result)
	return result, nil
}

// GetByIteration retrieves the points of one iteration of a run, ordered by
// asset ID then timepoint ID ASC.
func (s *DispatchResultStore) GetByIteration(_ context.Context, runID string, iteration int) ([]*domain.DispatchResultPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DispatchResultPoint
	for _, p := range s.data {
		if p.RunID == runID && p.Iteration == iteration {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sortDispatchResults(result)
	return result, nil
}

func sortDispatchResults(points []*domain.DispatchResultPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Iteration != points[j].Iteration {
			return points[i].Iteration < points[j].Iteration
		}
		if points[i].AssetID != points[j].AssetID {
			return points[i].AssetID < points[j].AssetID
		}
		return points[i].TimepointID < points[j].TimepointID
	})
}

// Verify interface compliance at compile time.
var _ storage.DispatchResultStore = (*DispatchResultStore)(nil)

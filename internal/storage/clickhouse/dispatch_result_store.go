package clickhouse

import (
	"context"
	"fmt"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// DispatchResultStore implements storage.DispatchResultStore using ClickHouse.
type DispatchResultStore struct {
	conn *Conn
}

// NewDispatchResultStore creates a new DispatchResultStore.
func NewDispatchResultStore(conn *Conn) *DispatchResultStore {
	return &DispatchResultStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DispatchResultStore = (*DispatchResultStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (run_id, iteration, asset_id, timepoint_id). Run ids are content-addressed,
// so the existence check only has to look at the batch's run/iteration pairs.
func (s *DispatchResultStore) InsertBulk(ctx context.Context, points []*domain.DispatchResultPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID       string
		iteration   int
		assetID     string
		timepointID string
	}
	seen := make(map[key]struct{})
	iterations := make(map[string]map[int]struct{})
	for _, p := range points {
		k := key{p.RunID, p.Iteration, p.AssetID, p.TimepointID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		byRun := iterations[p.RunID]
		if byRun == nil {
			byRun = make(map[int]struct{})
			iterations[p.RunID] = byRun
		}
		byRun[p.Iteration] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for runID, byRun := range iterations {
		for iteration := range byRun {
			exists, err := s.exists(ctx, runID, iteration)
			if err != nil {
				return fmt.Errorf("check exists: %w", err)
			}
			if exists {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO dispatch_results (run_id, iteration, asset_id, timepoint_id, power_mw, bound_mw)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err := batch.Append(p.RunID, int32(p.Iteration), p.AssetID, p.TimepointID, p.PowerMW, p.BoundMW)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all points of a run, ordered by iteration, asset ID,
// timepoint ID ASC.
func (s *DispatchResultStore) GetByRunID(ctx context.Context, runID string) ([]*domain.DispatchResultPoint, error) {
	query := `
		SELECT run_id, iteration, asset_id, timepoint_id, power_mw, bound_mw
		FROM dispatch_results
		WHERE run_id = ?
		ORDER BY iteration ASC, asset_id ASC, timepoint_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query dispatch results by run: %w", err)
	}
	defer rows.Close()

	return scanDispatchResults(rows)
}

// GetByIteration retrieves the points of one iteration of a run, ordered by
// asset ID then timepoint ID ASC.
func (s *DispatchResultStore) GetByIteration(ctx context.Context, runID string, iteration int) ([]*domain.DispatchResultPoint, error) {
	query := `
		SELECT run_id, iteration, asset_id, timepoint_id, power_mw, bound_mw
		FROM dispatch_results
		WHERE run_id = ? AND iteration = ?
		ORDER BY asset_id ASC, timepoint_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, int32(iteration))
	if err != nil {
		return nil, fmt.Errorf("query dispatch results by iteration: %w", err)
	}
	defer rows.Close()

	return scanDispatchResults(rows)
}

// exists checks if any rows exist for a run iteration.
func (s *DispatchResultStore) exists(ctx context.Context, runID string, iteration int) (bool, error) {
	query := `
		SELECT count(*) FROM dispatch_results
		WHERE run_id = ? AND iteration = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, int32(iteration)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanDispatchResults scans multiple rows.
func scanDispatchResults(rows chRows) ([]*domain.DispatchResultPoint, error) {
	var points []*domain.DispatchResultPoint

	for rows.Next() {
		var p domain.DispatchResultPoint
		var iteration int32

		err := rows.Scan(&p.RunID, &iteration, &p.AssetID, &p.TimepointID, &p.PowerMW, &p.BoundMW)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch result row: %w", err)
		}

		p.Iteration = int(iteration)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatch result rows: %w", err)
	}

	return points, nil
}

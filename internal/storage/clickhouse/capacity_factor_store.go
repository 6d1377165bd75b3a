package clickhouse

import (
	"context"
	"fmt"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// CapacityFactorStore implements storage.CapacityFactorStore using ClickHouse.
type CapacityFactorStore struct {
	conn *Conn
}

// NewCapacityFactorStore creates a new CapacityFactorStore.
func NewCapacityFactorStore(conn *Conn) *CapacityFactorStore {
	return &CapacityFactorStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CapacityFactorStore = (*CapacityFactorStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (scenario, asset_id, timepoint_id). MergeTree does not enforce uniqueness,
// so duplicates are checked explicitly before the batch is sent.
func (s *CapacityFactorStore) InsertBulk(ctx context.Context, scenario string, points []*domain.CapacityFactorPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		assetID     string
		timepointID string
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		k := key{p.AssetID, p.TimepointID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, scenario, p.AssetID, p.TimepointID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO capacity_factors (scenario, asset_id, timepoint_id, factor)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(scenario, p.AssetID, p.TimepointID, p.Factor); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByScenario retrieves all points of a scenario, ordered by asset ID then
// timepoint ID ASC.
func (s *CapacityFactorStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.CapacityFactorPoint, error) {
	query := `
		SELECT asset_id, timepoint_id, factor
		FROM capacity_factors
		WHERE scenario = ?
		ORDER BY asset_id ASC, timepoint_id ASC
	`

	rows, err := s.conn.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("query capacity factors by scenario: %w", err)
	}
	defer rows.Close()

	return scanCapacityFactors(rows)
}

// GetByAsset retrieves the points of one asset, ordered by timepoint ID ASC.
func (s *CapacityFactorStore) GetByAsset(ctx context.Context, scenario, assetID string) ([]*domain.CapacityFactorPoint, error) {
	query := `
		SELECT asset_id, timepoint_id, factor
		FROM capacity_factors
		WHERE scenario = ? AND asset_id = ?
		ORDER BY timepoint_id ASC
	`

	rows, err := s.conn.Query(ctx, query, scenario, assetID)
	if err != nil {
		return nil, fmt.Errorf("query capacity factors by asset: %w", err)
	}
	defer rows.Close()

	return scanCapacityFactors(rows)
}

// exists checks if a point with the given key exists.
func (s *CapacityFactorStore) exists(ctx context.Context, scenario, assetID, timepointID string) (bool, error) {
	query := `
		SELECT count(*) FROM capacity_factors
		WHERE scenario = ? AND asset_id = ? AND timepoint_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, scenario, assetID, timepointID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanCapacityFactors scans multiple rows.
func scanCapacityFactors(rows chRows) ([]*domain.CapacityFactorPoint, error) {
	var points []*domain.CapacityFactorPoint

	for rows.Next() {
		var p domain.CapacityFactorPoint
		if err := rows.Scan(&p.AssetID, &p.TimepointID, &p.Factor); err != nil {
			return nil, fmt.Errorf("scan capacity factor row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capacity factor rows: %w", err)
	}

	return points, nil
}

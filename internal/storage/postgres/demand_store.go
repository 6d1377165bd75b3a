package postgres

import (
	"context"
	"fmt"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// DemandStore implements storage.DemandStore using PostgreSQL.
type DemandStore struct {
	pool *Pool
}

// NewDemandStore creates a new DemandStore.
func NewDemandStore(pool *Pool) *DemandStore {
	return &DemandStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DemandStore = (*DemandStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (scenario, timepoint_id).
func (s *DemandStore) InsertBulk(ctx context.Context, scenario string, points []*domain.DemandPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin demand batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO demand_points (scenario, timepoint_id, demand_mw)
		VALUES ($1, $2, $3)
	`
	for _, p := range points {
		if _, err := tx.Exec(ctx, query, scenario, p.TimepointID, p.DemandMW); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert demand point: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetByScenario retrieves all points of a scenario, ordered by timepoint ID ASC.
func (s *DemandStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.DemandPoint, error) {
	query := `
		SELECT timepoint_id, demand_mw
		FROM demand_points
		WHERE scenario = $1
		ORDER BY timepoint_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get demand points by scenario: %w", err)
	}
	defer rows.Close()

	var out []*domain.DemandPoint
	for rows.Next() {
		var p domain.DemandPoint
		if err := rows.Scan(&p.TimepointID, &p.DemandMW); err != nil {
			return nil, fmt.Errorf("scan demand point row: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate demand point rows: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// PredeterminedBuildStore implements storage.PredeterminedBuildStore using PostgreSQL.
type PredeterminedBuildStore struct {
	pool *Pool
}

// NewPredeterminedBuildStore creates a new PredeterminedBuildStore.
func NewPredeterminedBuildStore(pool *Pool) *PredeterminedBuildStore {
	return &PredeterminedBuildStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PredeterminedBuildStore = (*PredeterminedBuildStore)(nil)

// Insert adds a build. Returns ErrDuplicateKey if (scenario, asset_id, build_year) exists.
func (s *PredeterminedBuildStore) Insert(ctx context.Context, scenario string, b *domain.PredeterminedBuild) error {
	query := `
		INSERT INTO predetermined_builds (scenario, asset_id, build_year, capacity_mw)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, scenario, b.AssetID, b.BuildYear, b.CapacityMW)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert predetermined build: %w", err)
	}
	return nil
}

// GetByScenario retrieves all builds of a scenario, ordered by asset ID then
// build year ASC.
func (s *PredeterminedBuildStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.PredeterminedBuild, error) {
	query := `
		SELECT asset_id, build_year, capacity_mw
		FROM predetermined_builds
		WHERE scenario = $1
		ORDER BY asset_id ASC, build_year ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get predetermined builds by scenario: %w", err)
	}
	defer rows.Close()

	return scanPredeterminedBuilds(rows)
}

// GetByAsset retrieves the builds of one asset, ordered by build year ASC.
func (s *PredeterminedBuildStore) GetByAsset(ctx context.Context, scenario, assetID string) ([]*domain.PredeterminedBuild, error) {
	query := `
		SELECT asset_id, build_year, capacity_mw
		FROM predetermined_builds
		WHERE scenario = $1 AND asset_id = $2
		ORDER BY build_year ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario, assetID)
	if err != nil {
		return nil, fmt.Errorf("get predetermined builds by asset: %w", err)
	}
	defer rows.Close()

	return scanPredeterminedBuilds(rows)
}

func scanPredeterminedBuilds(rows pgx.Rows) ([]*domain.PredeterminedBuild, error) {
	var out []*domain.PredeterminedBuild
	for rows.Next() {
		var b domain.PredeterminedBuild
		if err := rows.Scan(&b.AssetID, &b.BuildYear, &b.CapacityMW); err != nil {
			return nil, fmt.Errorf("scan predetermined build row: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predetermined build rows: %w", err)
	}
	return out, nil
}

// CandidateVintageStore implements storage.CandidateVintageStore using PostgreSQL.
type CandidateVintageStore struct {
	pool *Pool
}

// NewCandidateVintageStore creates a new CandidateVintageStore.
func NewCandidateVintageStore(pool *Pool) *CandidateVintageStore {
	return &CandidateVintageStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandidateVintageStore = (*CandidateVintageStore)(nil)

// Insert adds a vintage. Returns ErrDuplicateKey if (scenario, asset_id, period_id) exists.
func (s *CandidateVintageStore) Insert(ctx context.Context, scenario string, v *domain.CandidateVintage) error {
	query := `
		INSERT INTO candidate_vintages (scenario, asset_id, period_id)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, scenario, v.AssetID, v.PeriodID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert candidate vintage: %w", err)
	}
	return nil
}

// GetByScenario retrieves all vintages of a scenario, ordered by asset ID
// then period ID ASC.
func (s *CandidateVintageStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.CandidateVintage, error) {
	query := `
		SELECT asset_id, period_id
		FROM candidate_vintages
		WHERE scenario = $1
		ORDER BY asset_id ASC, period_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get candidate vintages by scenario: %w", err)
	}
	defer rows.Close()

	var out []*domain.CandidateVintage
	for rows.Next() {
		var v domain.CandidateVintage
		if err := rows.Scan(&v.AssetID, &v.PeriodID); err != nil {
			return nil, fmt.Errorf("scan candidate vintage row: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate vintage rows: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// TechnologyStore implements storage.TechnologyStore using PostgreSQL.
type TechnologyStore struct {
	pool *Pool
}

// NewTechnologyStore creates a new TechnologyStore.
func NewTechnologyStore(pool *Pool) *TechnologyStore {
	return &TechnologyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TechnologyStore = (*TechnologyStore)(nil)

// Insert adds a new technology. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *TechnologyStore) Insert(ctx context.Context, scenario string, tech *domain.Technology) error {
	query := `
		INSERT INTO technologies (
			scenario, technology_id, category, retirement_age,
			forced_outage_rate, scheduled_outage_rate, overnight_cost, fixed_om, variable_om
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		scenario,
		tech.ID,
		string(tech.Category),
		tech.RetirementAge,
		tech.ForcedOutageRate,
		tech.ScheduledOutageRate,
		tech.OvernightCost,
		tech.FixedOM,
		tech.VariableOM,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert technology: %w", err)
	}
	return nil
}

// GetByID retrieves a technology by its ID. Returns ErrNotFound if not exists.
func (s *TechnologyStore) GetByID(ctx context.Context, scenario, technologyID string) (*domain.Technology, error) {
	query := technologySelect + ` WHERE scenario = $1 AND technology_id = $2`

	row := s.pool.QueryRow(ctx, query, scenario, technologyID)
	tech, err := scanTechnology(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get technology by id: %w", err)
	}
	return tech, nil
}

// GetByScenario retrieves all technologies of a scenario, ordered by ID ASC.
func (s *TechnologyStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.Technology, error) {
	query := technologySelect + ` WHERE scenario = $1 ORDER BY technology_id ASC`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get technologies by scenario: %w", err)
	}
	defer rows.Close()

	var out []*domain.Technology
	for rows.Next() {
		tech, err := scanTechnology(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technology row: %w", err)
		}
		out = append(out, tech)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate technology rows: %w", err)
	}
	return out, nil
}

const technologySelect = `
	SELECT technology_id, category, retirement_age,
	       forced_outage_rate, scheduled_outage_rate, overnight_cost, fixed_om, variable_om
	FROM technologies
`

func scanTechnology(row pgx.Row) (*domain.Technology, error) {
	var tech domain.Technology
	var categoryStr string

	err := row.Scan(
		&tech.ID,
		&categoryStr,
		&tech.RetirementAge,
		&tech.ForcedOutageRate,
		&tech.ScheduledOutageRate,
		&tech.OvernightCost,
		&tech.FixedOM,
		&tech.VariableOM,
	)
	if err != nil {
		return nil, err
	}

	tech.Category = domain.Category(categoryStr)
	return &tech, nil
}

// AssetStore implements storage.AssetStore using PostgreSQL.
type AssetStore struct {
	pool *Pool
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(pool *Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AssetStore = (*AssetStore)(nil)

// Insert adds a new asset. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *AssetStore) Insert(ctx context.Context, scenario string, a *domain.Asset) error {
	query := `
		INSERT INTO assets (scenario, asset_id, technology_id)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, scenario, a.ID, a.TechnologyID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(ctx context.Context, scenario, assetID string) (*domain.Asset, error) {
	query := `
		SELECT asset_id, technology_id
		FROM assets
		WHERE scenario = $1 AND asset_id = $2
	`

	var a domain.Asset
	err := s.pool.QueryRow(ctx, query, scenario, assetID).Scan(&a.ID, &a.TechnologyID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get asset by id: %w", err)
	}
	return &a, nil
}

// GetByScenario retrieves all assets of a scenario, ordered by ID ASC.
func (s *AssetStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.Asset, error) {
	query := `
		SELECT asset_id, technology_id
		FROM assets
		WHERE scenario = $1
		ORDER BY asset_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get assets by scenario: %w", err)
	}
	defer rows.Close()

	var out []*domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.TechnologyID); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset rows: %w", err)
	}
	return out, nil
}

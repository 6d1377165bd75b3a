package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// PeriodStore implements storage.PeriodStore using PostgreSQL.
type PeriodStore struct {
	pool *Pool
}

// NewPeriodStore creates a new PeriodStore.
func NewPeriodStore(pool *Pool) *PeriodStore {
	return &PeriodStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PeriodStore = (*PeriodStore)(nil)

// Insert adds a new period. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *PeriodStore) Insert(ctx context.Context, scenario string, p *domain.Period) error {
	query := `
		INSERT INTO periods (scenario, period_id, start_year, end_year)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, scenario, p.ID, p.StartYear, p.EndYear)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert period: %w", err)
	}
	return nil
}

// GetByID retrieves a period by its ID. Returns ErrNotFound if not exists.
func (s *PeriodStore) GetByID(ctx context.Context, scenario, periodID string) (*domain.Period, error) {
	query := `
		SELECT period_id, start_year, end_year
		FROM periods
		WHERE scenario = $1 AND period_id = $2
	`

	row := s.pool.QueryRow(ctx, query, scenario, periodID)
	p, err := scanPeriod(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get period by id: %w", err)
	}
	return p, nil
}

// GetByScenario retrieves all periods of a scenario, ordered by start year ASC.
func (s *PeriodStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.Period, error) {
	query := `
		SELECT period_id, start_year, end_year
		FROM periods
		WHERE scenario = $1
		ORDER BY start_year ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get periods by scenario: %w", err)
	}
	defer rows.Close()

	var periods []*domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period row: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period rows: %w", err)
	}
	return periods, nil
}

func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var p domain.Period
	if err := row.Scan(&p.ID, &p.StartYear, &p.EndYear); err != nil {
		return nil, err
	}
	return &p, nil
}

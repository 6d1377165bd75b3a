package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.SolveRun) error {
	query := `
		INSERT INTO solve_runs (run_id, scenario, started_at, finished_at, iterations, converged, objective)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Scenario, r.StartedAt, r.FinishedAt, r.Iterations, r.Converged, r.Objective)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert solve run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.SolveRun, error) {
	query := `
		SELECT run_id, scenario, started_at, finished_at, iterations, converged, objective
		FROM solve_runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanSolveRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get solve run by id: %w", err)
	}
	return r, nil
}

// GetByScenario retrieves all runs of a scenario, ordered by start time ASC.
func (s *RunStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.SolveRun, error) {
	query := `
		SELECT run_id, scenario, started_at, finished_at, iterations, converged, objective
		FROM solve_runs
		WHERE scenario = $1
		ORDER BY started_at ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get solve runs by scenario: %w", err)
	}
	defer rows.Close()

	var out []*domain.SolveRun
	for rows.Next() {
		r, err := scanSolveRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan solve run row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solve run rows: %w", err)
	}
	return out, nil
}

func scanSolveRun(row pgx.Row) (*domain.SolveRun, error) {
	var r domain.SolveRun
	err := row.Scan(
		&r.RunID,
		&r.Scenario,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Iterations,
		&r.Converged,
		&r.Objective,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

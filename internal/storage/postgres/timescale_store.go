package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// TimeseriesStore implements storage.TimeseriesStore using PostgreSQL.
type TimeseriesStore struct {
	pool *Pool
}

// NewTimeseriesStore creates a new TimeseriesStore.
func NewTimeseriesStore(pool *Pool) *TimeseriesStore {
	return &TimeseriesStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TimeseriesStore = (*TimeseriesStore)(nil)

// Insert adds a new timeseries. Returns ErrDuplicateKey if (scenario, id) exists.
func (s *TimeseriesStore) Insert(ctx context.Context, scenario string, ts *domain.Timeseries) error {
	query := `
		INSERT INTO timeseries (
			scenario, timeseries_id, period_id, hours_per_timepoint, timepoint_count, scale_to_period
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		scenario, ts.ID, ts.PeriodID, ts.HoursPerTimepoint, ts.TimepointCount, ts.ScaleToPeriod)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert timeseries: %w", err)
	}
	return nil
}

// GetByScenario retrieves all timeseries of a scenario, ordered by ID ASC.
func (s *TimeseriesStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.Timeseries, error) {
	query := `
		SELECT timeseries_id, period_id, hours_per_timepoint, timepoint_count, scale_to_period
		FROM timeseries
		WHERE scenario = $1
		ORDER BY timeseries_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get timeseries by scenario: %w", err)
	}
	defer rows.Close()

	return scanTimeseriesRows(rows)
}

// GetByPeriod retrieves the timeseries attached to a period, ordered by ID ASC.
func (s *TimeseriesStore) GetByPeriod(ctx context.Context, scenario, periodID string) ([]*domain.Timeseries, error) {
	query := `
		SELECT timeseries_id, period_id, hours_per_timepoint, timepoint_count, scale_to_period
		FROM timeseries
		WHERE scenario = $1 AND period_id = $2
		ORDER BY timeseries_id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario, periodID)
	if err != nil {
		return nil, fmt.Errorf("get timeseries by period: %w", err)
	}
	defer rows.Close()

	return scanTimeseriesRows(rows)
}

func scanTimeseriesRows(rows pgx.Rows) ([]*domain.Timeseries, error) {
	var out []*domain.Timeseries
	for rows.Next() {
		var ts domain.Timeseries
		err := rows.Scan(&ts.ID, &ts.PeriodID, &ts.HoursPerTimepoint, &ts.TimepointCount, &ts.ScaleToPeriod)
		if err != nil {
			return nil, fmt.Errorf("scan timeseries row: %w", err)
		}
		out = append(out, &ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeseries rows: %w", err)
	}
	return out, nil
}

// TimepointStore implements storage.TimepointStore using PostgreSQL.
type TimepointStore struct {
	pool *Pool
}

// NewTimepointStore creates a new TimepointStore.
func NewTimepointStore(pool *Pool) *TimepointStore {
	return &TimepointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TimepointStore = (*TimepointStore)(nil)

// InsertBulk adds multiple timepoints. Fails entire batch on duplicate (scenario, id).
func (s *TimepointStore) InsertBulk(ctx context.Context, scenario string, points []*domain.Timepoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin timepoint batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO timepoints (scenario, timepoint_id, timeseries_id, label, ordinal)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, tp := range points {
		if _, err := tx.Exec(ctx, query, scenario, tp.ID, tp.TimeseriesID, tp.Label, tp.Ordinal); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert timepoint: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetByScenario retrieves all timepoints of a scenario, ordered by timeseries
// ID then ordinal ASC.
func (s *TimepointStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.Timepoint, error) {
	query := `
		SELECT timepoint_id, timeseries_id, label, ordinal
		FROM timepoints
		WHERE scenario = $1
		ORDER BY timeseries_id ASC, ordinal ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("get timepoints by scenario: %w", err)
	}
	defer rows.Close()

	return scanTimepointRows(rows)
}

// GetByTimeseries retrieves the timepoints of one series, ordered by ordinal ASC.
func (s *TimepointStore) GetByTimeseries(ctx context.Context, scenario, timeseriesID string) ([]*domain.Timepoint, error) {
	query := `
		SELECT timepoint_id, timeseries_id, label, ordinal
		FROM timepoints
		WHERE scenario = $1 AND timeseries_id = $2
		ORDER BY ordinal ASC
	`

	rows, err := s.pool.Query(ctx, query, scenario, timeseriesID)
	if err != nil {
		return nil, fmt.Errorf("get timepoints by timeseries: %w", err)
	}
	defer rows.Close()

	return scanTimepointRows(rows)
}

func scanTimepointRows(rows pgx.Rows) ([]*domain.Timepoint, error) {
	var out []*domain.Timepoint
	for rows.Next() {
		var tp domain.Timepoint
		if err := rows.Scan(&tp.ID, &tp.TimeseriesID, &tp.Label, &tp.Ordinal); err != nil {
			return nil, fmt.Errorf("scan timepoint row: %w", err)
		}
		out = append(out, &tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timepoint rows: %w", err)
	}
	return out, nil
}

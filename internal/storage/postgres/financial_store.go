package postgres

import (
	"context"
	"fmt"

	"grid-expansion-lab/internal/domain"
	"grid-expansion-lab/internal/storage"
)

// FinancialStore implements storage.FinancialStore using PostgreSQL.
type FinancialStore struct {
	pool *Pool
}

// NewFinancialStore creates a new FinancialStore.
func NewFinancialStore(pool *Pool) *FinancialStore {
	return &FinancialStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FinancialStore = (*FinancialStore)(nil)

// Insert adds financial parameters. Returns ErrDuplicateKey if the scenario exists.
func (s *FinancialStore) Insert(ctx context.Context, f *domain.ScenarioFinancials) error {
	query := `
		INSERT INTO scenario_financials (scenario, base_financial_year, interest_rate, discount_rate)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, f.Scenario, f.BaseFinancialYear, f.InterestRate, f.DiscountRate)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scenario financials: %w", err)
	}
	return nil
}

// GetByScenario retrieves the parameters of a scenario. Returns ErrNotFound if not exists.
func (s *FinancialStore) GetByScenario(ctx context.Context, scenario string) (*domain.ScenarioFinancials, error) {
	query := `
		SELECT scenario, base_financial_year, interest_rate, discount_rate
		FROM scenario_financials
		WHERE scenario = $1
	`

	var f domain.ScenarioFinancials
	err := s.pool.QueryRow(ctx, query, scenario).
		Scan(&f.Scenario, &f.BaseFinancialYear, &f.InterestRate, &f.DiscountRate)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario financials: %w", err)
	}
	return &f, nil
}

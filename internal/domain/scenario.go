package domain

// ScenarioFinancials holds the discounting parameters of one scenario.
// Corresponds to the scenario_financials table in PostgreSQL.
type ScenarioFinancials struct {
	Scenario          string  // scenario name, unique
	BaseFinancialYear int     // year all costs are discounted to
	InterestRate      float64 // annual rate for capital recovery
	DiscountRate      float64 // annual rate for NPV discounting
}

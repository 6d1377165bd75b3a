package domain

// SolveRun summarizes one full planning run (all convergence iterations).
// Corresponds to solve_runs table in PostgreSQL.
type SolveRun struct {
	RunID      string  // deterministic run identifier
	Scenario   string  // free-form scenario name
	StartedAt  int64   // Unix timestamp in milliseconds
	FinishedAt int64   // Unix timestamp in milliseconds
	Iterations int     // solver rounds executed
	Converged  bool    // false means the iteration budget ran out
	Objective  float64 // total NPV system cost in base-year dollars
}

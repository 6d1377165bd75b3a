// Package main provides the planning-run entry point.
// Executes: assembly → convergence solve → persistence → report rendering
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"grid-expansion-lab/internal/inputs"
	"grid-expansion-lab/internal/orchestrator"
	"grid-expansion-lab/internal/reporting"
	"grid-expansion-lab/internal/solver"
	"grid-expansion-lab/internal/storage"
	chstore "grid-expansion-lab/internal/storage/clickhouse"
	"grid-expansion-lab/internal/storage/memory"
	pgstore "grid-expansion-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	scenario := flag.String("scenario", "", "Scenario name to solve")
	scenarioFile := flag.String("scenario-file", "", "Scenario JSON document (required with --use-memory)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Solve from a scenario file without a database")
	maxIterations := flag.Int("max-iterations", 20, "Convergence-loop iteration limit")
	tolerance := flag.Float64("tolerance", 0, "Relative objective tolerance (0 for default)")
	outputDir := flag.String("output-dir", "output", "Output directory for report files")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[plan] ", log.LstdFlags|log.Lshortfile)

	if *useMemory && *scenarioFile == "" {
		logger.Fatal("--scenario-file is required with --use-memory")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory with --scenario-file)")
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling solve...\n", sig)
		cancel()
	}()

	if err := run(ctx, logger, *scenario, *scenarioFile, *postgresDSN, *clickhouseDSN,
		*useMemory, *maxIterations, *tolerance, *outputDir, *verbose); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, scenario, scenarioFile, postgresDSN, clickhouseDSN string,
	useMemory bool, maxIterations int, tolerance float64, outputDir string, verbose bool) error {

	stores, dispatchResults, runs, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	// Memory mode seeds the scenario from the file first.
	if useMemory {
		doc, err := inputs.LoadScenarioFile(scenarioFile)
		if err != nil {
			return err
		}
		if err := doc.Seed(ctx, stores); err != nil {
			return fmt.Errorf("seed scenario: %w", err)
		}
		if scenario == "" {
			scenario = doc.Scenario
		}
	}
	if scenario == "" {
		return fmt.Errorf("--scenario is required")
	}
	logger.Printf("Solving scenario %q (max %d iterations)...", scenario, maxIterations)

	orch := orchestrator.New(orchestrator.Options{
		InputStores:     stores,
		DispatchResults: dispatchResults,
		Runs:            runs,
		Solver:          solver.NewGreedy(),
		MaxIterations:   maxIterations,
		Tolerance:       tolerance,
		Verbose:         verbose,
	})

	result, err := orch.Run(ctx, scenario)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s completed:\n", result.RunID)
	fmt.Printf("  Converged:  %v\n", result.Converged)
	fmt.Printf("  Iterations: %d\n", result.Iterations)
	fmt.Printf("  Objective:  %.2f\n", result.Objective)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	// Render the report
	report, err := reporting.NewGenerator(runs).Generate(ctx, result.RunID, result.Model, result.Final)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	files := map[string]string{
		"REPORT.md":              reporting.RenderMarkdown(report),
		"capacity_decisions.csv": reporting.RenderCapacityCSV(report.CapacityDecisions),
		"marginal_costs.csv":     reporting.RenderMarginalsCSV(report.Marginals),
	}
	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("  - %s\n", path)
	}

	return nil
}

// createStores creates input stores plus the run and dispatch-result stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (inputs.Stores, storage.DispatchResultStore, storage.RunStore, func(), error) {
	if useMemory {
		stores := inputs.Stores{
			Periods:         memory.NewPeriodStore(),
			Timeseries:      memory.NewTimeseriesStore(),
			Timepoints:      memory.NewTimepointStore(),
			Technologies:    memory.NewTechnologyStore(),
			Assets:          memory.NewAssetStore(),
			Builds:          memory.NewPredeterminedBuildStore(),
			Vintages:        memory.NewCandidateVintageStore(),
			Financials:      memory.NewFinancialStore(),
			Demand:          memory.NewDemandStore(),
			CapacityFactors: memory.NewCapacityFactorStore(),
		}
		return stores, memory.NewDispatchResultStore(), memory.NewRunStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return inputs.Stores{}, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return inputs.Stores{}, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := inputs.Stores{
		Periods:         pgstore.NewPeriodStore(pool),
		Timeseries:      pgstore.NewTimeseriesStore(pool),
		Timepoints:      pgstore.NewTimepointStore(pool),
		Technologies:    pgstore.NewTechnologyStore(pool),
		Assets:          pgstore.NewAssetStore(pool),
		Builds:          pgstore.NewPredeterminedBuildStore(pool),
		Vintages:        pgstore.NewCandidateVintageStore(pool),
		Financials:      pgstore.NewFinancialStore(pool),
		Demand:          pgstore.NewDemandStore(pool),
		CapacityFactors: chstore.NewCapacityFactorStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, chstore.NewDispatchResultStore(chConn), pgstore.NewRunStore(pool), cleanup, nil
}

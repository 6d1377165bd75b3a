// Package main provides the scenario ingest entry point. It loads a
// scenario JSON document into PostgreSQL and ClickHouse (or memory for a
// dry-run validation).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"grid-expansion-lab/internal/inputs"
	"grid-expansion-lab/internal/observability"
	chstore "grid-expansion-lab/internal/storage/clickhouse"
	"grid-expansion-lab/internal/storage/memory"
	"grid-expansion-lab/internal/storage/migrations"
	pgstore "grid-expansion-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	scenarioFile := flag.String("scenario-file", "", "Scenario JSON document to load")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Validate against in-memory storage without persisting")
	migrate := flag.Bool("migrate", true, "Run schema migrations before loading")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *scenarioFile == "" {
		logger.Fatal("--scenario-file is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for a dry run)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	if err := run(ctx, logger, *scenarioFile, *postgresDSN, *clickhouseDSN, *useMemory, *migrate); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, scenarioFile, postgresDSN, clickhouseDSN string, useMemory, migrate bool) error {
	doc, err := inputs.LoadScenarioFile(scenarioFile)
	if err != nil {
		return err
	}
	logger.Printf("Loaded scenario %q: %d periods, %d timepoints, %d assets",
		doc.Scenario, len(doc.Periods), len(doc.Timepoints), len(doc.Assets))

	stores, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useMemory, migrate)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := doc.Seed(ctx, stores); err != nil {
		return fmt.Errorf("seed scenario %q: %w", doc.Scenario, err)
	}

	if useMemory {
		logger.Printf("Scenario %q validated (dry run, nothing persisted)", doc.Scenario)
	} else {
		logger.Printf("Scenario %q ingested", doc.Scenario)
	}
	return nil
}

// createStores creates the input stores, running migrations when asked.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (inputs.Stores, func(), error) {
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
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return inputs.Stores{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	var chConn *chstore.Conn
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return inputs.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return inputs.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
	} else {
		chConn, err = chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return inputs.Stores{}, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
	}

	stores := inputs.Stores{
		// PostgreSQL stores (structural inputs)
		Periods:      pgstore.NewPeriodStore(pool),
		Timeseries:   pgstore.NewTimeseriesStore(pool),
		Timepoints:   pgstore.NewTimepointStore(pool),
		Technologies: pgstore.NewTechnologyStore(pool),
		Assets:       pgstore.NewAssetStore(pool),
		Builds:       pgstore.NewPredeterminedBuildStore(pool),
		Vintages:     pgstore.NewCandidateVintageStore(pool),
		Financials:   pgstore.NewFinancialStore(pool),
		Demand:       pgstore.NewDemandStore(pool),

		// ClickHouse stores (bulk timeseries data)
		CapacityFactors: chstore.NewCapacityFactorStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

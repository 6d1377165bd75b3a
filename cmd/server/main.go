// Package main provides the planning service:
// - HTTP API: trigger solves, query status
// - WebSocket: live solve progress for dashboards
// - Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"grid-expansion-lab/internal/inputs"
	"grid-expansion-lab/internal/observability"
	"grid-expansion-lab/internal/orchestrator"
	"grid-expansion-lab/internal/progress"
	"grid-expansion-lab/internal/reporting"
	"grid-expansion-lab/internal/solver"
	"grid-expansion-lab/internal/storage"
	chstore "grid-expansion-lab/internal/storage/clickhouse"
	"grid-expansion-lab/internal/storage/memory"
	"grid-expansion-lab/internal/storage/migrations"
	pgstore "grid-expansion-lab/internal/storage/postgres"
)

// Server holds all components of the planning service.
type Server struct {
	// Configuration
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	maxIterations int
	tolerance     float64

	// Stores
	stores *allStores

	// Components
	hub    *progress.Hub
	logger *log.Logger

	// State
	mu           sync.Mutex
	solveRunning bool
	startedAt    time.Time
	lastSolveRun time.Time
	lastResult   *orchestrator.RunResult

	// Stats
	solveRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	inputs          inputs.Stores
	dispatchResults storage.DispatchResultStore
	runs            storage.RunStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	scenarioFile := flag.String("scenario-file", "", "Scenario JSON document to preload (memory mode)")
	migrate := flag.Bool("migrate", true, "Run schema migrations on startup")
	maxIterations := flag.Int("max-iterations", 20, "Convergence-loop iteration limit")
	tolerance := flag.Float64("tolerance", 0, "Relative objective tolerance (0 for default)")
	scenario := flag.String("scenario", "", "Scenario for scheduled solves")
	solveInterval := flag.Duration("solve-interval", 0, "Scheduled solve interval (0 disables)")
	addr := flag.String("addr", ":8080", "HTTP listen address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *useMemory && *scenarioFile == "" {
		logger.Fatal("--scenario-file is required with --use-memory")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Preload scenario in memory mode
	if *useMemory {
		doc, err := inputs.LoadScenarioFile(*scenarioFile)
		if err != nil {
			logger.Fatalf("Failed to load scenario file: %v", err)
		}
		if err := doc.Seed(ctx, stores.inputs); err != nil {
			logger.Fatalf("Failed to seed scenario %q: %v", doc.Scenario, err)
		}
		logger.Printf("Preloaded scenario %q", doc.Scenario)
	}

	// Create server
	server := &Server{
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		maxIterations: *maxIterations,
		tolerance:     *tolerance,
		stores:        stores,
		hub:           progress.NewHub(nil),
		logger:        logger,
		startedAt:     time.Now(),
	}

	httpSrv := &http.Server{Addr: *addr, Handler: server.routes()}

	// Start scheduled solves if configured
	if *solveInterval > 0 {
		if *scenario == "" {
			logger.Fatal("--scenario is required with --solve-interval")
		}
		go server.runSolveScheduler(ctx, *scenario, *solveInterval)
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		server.hub.Close()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
	close(done)

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			inputs: inputs.Stores{
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
			},
			dispatchResults: memory.NewDispatchResultStore(),
			runs:            memory.NewRunStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse
	var chConn *chstore.Conn
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
	} else {
		chConn, err = chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
	}

	stores := &allStores{
		inputs: inputs.Stores{
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
		},
		dispatchResults: chstore.NewDispatchResultStore(chConn),
		runs:            pgstore.NewRunStore(pool),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// Live solve progress
	mux.HandleFunc("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.hub.ServeHTTP(w, r)
		observability.UpdateProgressSubscribers(s.hub.ClientCount())
	})

	// Trigger a solve
	mux.HandleFunc("/solve", s.handleSolve)

	// Report for the most recent solve
	mux.HandleFunc("/report", s.handleReport)

	return mux
}

// runSolveScheduler re-solves one scenario on a fixed interval.
func (s *Server) runSolveScheduler(ctx context.Context, scenario string, interval time.Duration) {
	s.logger.Printf("Starting solve scheduler for %q (interval: %v)...", scenario, interval)

	// Run immediately on start
	if _, err := s.solve(ctx, scenario); err != nil {
		s.logger.Printf("Scheduled solve error: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.solve(ctx, scenario); err != nil {
				s.logger.Printf("Scheduled solve error: %v", err)
			}
		}
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	SolveRunning bool      `json:"solve_running"`
	SolveRuns    int       `json:"solve_runs"`
	LastSolveRun time.Time `json:"last_solve_run,omitempty"`
	LastRunID    string    `json:"last_run_id,omitempty"`
	LastScenario string    `json:"last_scenario,omitempty"`
	Subscribers  int       `json:"progress_subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.startedAt).String(),
		SolveRunning: s.solveRunning,
		SolveRuns:    s.solveRuns,
		LastSolveRun: s.lastSolveRun,
	}
	if s.lastResult != nil {
		resp.LastRunID = s.lastResult.RunID
		resp.LastScenario = s.lastResult.Scenario
	}
	s.mu.Unlock()
	resp.Subscribers = s.hub.ClientCount()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SolveResponse is the JSON response for a completed solve.
type SolveResponse struct {
	RunID      string   `json:"run_id"`
	Scenario   string   `json:"scenario"`
	Converged  bool     `json:"converged"`
	Iterations int      `json:"iterations"`
	Objective  float64  `json:"objective"`
	Errors     []string `json:"errors,omitempty"`
}

var errSolveRunning = fmt.Errorf("a solve is already running")

// solve runs one planning run. One solve at a time.
func (s *Server) solve(ctx context.Context, scenario string) (*orchestrator.RunResult, error) {
	s.mu.Lock()
	if s.solveRunning {
		s.mu.Unlock()
		return nil, errSolveRunning
	}
	s.solveRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.solveRunning = false
		s.lastSolveRun = time.Now()
		s.solveRuns++
		s.mu.Unlock()
	}()

	s.logger.Printf("Solving scenario %q...", scenario)
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		InputStores:     s.stores.inputs,
		DispatchResults: s.stores.dispatchResults,
		Runs:            s.stores.runs,
		Solver:          solver.NewGreedy(),
		MaxIterations:   s.maxIterations,
		Tolerance:       s.tolerance,
		Hub:             s.hub,
		Verbose:         true,
	})

	result, err := orch.Run(ctx, scenario)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	s.logger.Printf("Solve completed in %v: run %s, %d iterations, converged=%v",
		time.Since(start), result.RunID, result.Iterations, result.Converged)
	return result, nil
}

// handleSolve triggers a planning run for ?scenario=.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	scenario := r.URL.Query().Get("scenario")
	if scenario == "" {
		http.Error(w, "scenario query parameter is required", http.StatusBadRequest)
		return
	}

	result, err := s.solve(r.Context(), scenario)
	if err == errSolveRunning {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.logger.Printf("Solve error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SolveResponse{
		RunID:      result.RunID,
		Scenario:   scenario,
		Converged:  result.Converged,
		Iterations: result.Iterations,
		Objective:  result.Objective,
		Errors:     result.Errors,
	})
}

// handleReport renders the markdown report for the most recent solve.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.lastResult
	s.mu.Unlock()

	if result == nil {
		http.Error(w, "no completed solve yet", http.StatusNotFound)
		return
	}

	report, err := reporting.NewGenerator(s.stores.runs).Generate(r.Context(), result.RunID, result.Model, result.Final)
	if err != nil {
		s.logger.Printf("Report error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, reporting.RenderMarkdown(report))
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

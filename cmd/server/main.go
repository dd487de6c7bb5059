// Package main provides the valuation server that runs all components
// together:
// - HTTP API: fair-price valuation and listing lookup
// - Cache sweeper (scheduled): removes expired valuation reports
// - Complex matcher (scheduled): links unresolved listings to complexes
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

	"estate-valuation/internal/api"
	"estate-valuation/internal/batch"
	"estate-valuation/internal/lookup"
	"estate-valuation/internal/market"
	"estate-valuation/internal/matching"
	"estate-valuation/internal/observability"
	"estate-valuation/internal/storage"
	chstore "estate-valuation/internal/storage/clickhouse"
	"estate-valuation/internal/storage/memory"
	"estate-valuation/internal/storage/migrations"
	pgstore "estate-valuation/internal/storage/postgres"
	"estate-valuation/internal/valuation"
)

// Server holds all components of the valuation service.
type Server struct {
	// Configuration
	httpAddr      string
	sweepInterval time.Duration
	matchInterval time.Duration
	matchCities   []string
	useMemory     bool

	// Stores
	stores *allStores

	// Components
	valuations *valuation.Service
	markets    *market.Reporter
	matcher    *batch.ComplexMatcher
	logger     *log.Logger

	// State
	mu             sync.Mutex
	started        time.Time
	lastSweepRun   time.Time
	lastMatchRun   time.Time
	matchRunning   bool
	sweepRuns      int
	matchRuns      int
	entriesSwept   int
	listingsLinked int
}

// allStores holds all storage implementations.
type allStores struct {
	listingStore     storage.ListingStore
	streetStore      storage.StreetStore
	complexStore     storage.ComplexStore
	cacheStore       storage.ValuationCacheStore
	observationStore storage.PriceObservationStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, disables price observations when empty)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	sweepInterval := flag.Duration("sweep-interval", 1*time.Hour, "Expired cache sweep interval")
	matchInterval := flag.Duration("match-interval", 0, "Complex matcher run interval (0 disables scheduled matching)")
	matchCities := flag.String("match-cities", os.Getenv("MATCH_CITIES"), "Comma-separated cities for scheduled complex matching")
	minConfidence := flag.Float64("match-min-confidence", matching.DefaultMinComplexConfidence, "Minimum complex match confidence")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	cities := splitList(*matchCities)
	if *matchInterval > 0 && len(cities) == 0 {
		logger.Fatal("--match-cities is required when --match-interval is set")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	valuations := valuation.NewService(
		stores.listingStore,
		stores.streetStore,
		stores.cacheStore,
		stores.observationStore,
		log.New(os.Stdout, "[valuation] ", log.LstdFlags|log.Lshortfile),
		time.Now,
	)

	// Market summaries need the observation store, which is optional.
	var markets *market.Reporter
	if stores.observationStore != nil {
		markets = market.NewReporter(stores.observationStore, stores.complexStore, time.Now)
	}

	matcher := batch.NewComplexMatcher(
		stores.listingStore,
		stores.complexStore,
		stores.streetStore,
		batch.DefaultPageSize,
		*minConfidence,
		batch.DefaultProgressCadence,
		log.New(os.Stdout, "[complexmatch] ", log.LstdFlags|log.Lshortfile),
	)

	server := &Server{
		httpAddr:      *httpAddr,
		sweepInterval: *sweepInterval,
		matchInterval: *matchInterval,
		matchCities:   cities,
		useMemory:     *useMemory,
		stores:        stores,
		valuations:    valuations,
		markets:       markets,
		matcher:       matcher,
		logger:        logger,
		started:       time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			listingStore:     memory.NewListingStore(),
			streetStore:      memory.NewStreetStore(),
			complexStore:     memory.NewComplexStore(),
			cacheStore:       memory.NewValuationCacheStore(),
			observationStore: memory.NewPriceObservationStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		listingStore: pgstore.NewListingStore(pool),
		streetStore:  pgstore.NewStreetStore(pool),
		complexStore: pgstore.NewComplexStore(pool),
		cacheStore:   pgstore.NewValuationCacheStore(pool),
	}

	// ClickHouse is optional: without it valuations still work, price
	// observations are simply not recorded.
	if clickhouseDSN == "" {
		return stores, func() { pool.Close() }, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	stores.observationStore = chstore.NewPriceObservationStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting valuation server...")

	errCh := make(chan error, 3)

	// Start HTTP server in background
	go func() {
		if err := s.runHTTPServer(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start cache sweep scheduler in background
	go func() {
		if err := s.runSweepScheduler(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("sweep scheduler: %w", err)
		}
	}()

	// Start complex matcher scheduler when enabled
	if s.matchInterval > 0 {
		go func() {
			if err := s.runMatchScheduler(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("match scheduler: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runHTTPServer serves the API until the context is cancelled.
func (s *Server) runHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()

	handler := api.NewHandler(
		lookup.NewResolver(s.stores.listingStore),
		s.valuations,
		s.markets,
		s.logger,
	)
	handler.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	srv := &http.Server{Addr: s.httpAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting HTTP server on %s", s.httpAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runSweepScheduler periodically removes expired valuation cache entries.
func (s *Server) runSweepScheduler(ctx context.Context) error {
	s.logger.Printf("Starting cache sweep scheduler (interval: %v)...", s.sweepInterval)

	// Run immediately on start
	s.runSweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep executes one cache cleanup pass.
func (s *Server) runSweep(ctx context.Context) {
	removed, err := s.stores.cacheStore.CleanupExpired(ctx, time.Now())
	if err != nil {
		s.logger.Printf("Cache sweep error: %v", err)
		return
	}

	s.mu.Lock()
	s.lastSweepRun = time.Now()
	s.sweepRuns++
	s.entriesSwept += removed
	s.mu.Unlock()

	observability.RecordCacheSweep(removed)
	if removed > 0 {
		s.logger.Printf("Cache sweep removed %d expired entries", removed)
	}
}

// runMatchScheduler runs the complex matcher on schedule.
func (s *Server) runMatchScheduler(ctx context.Context) error {
	s.logger.Printf("Starting complex match scheduler (interval: %v, cities: %v)...", s.matchInterval, s.matchCities)

	// Run immediately on start
	s.runMatch(ctx)

	ticker := time.NewTicker(s.matchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runMatch(ctx)
		}
	}
}

// runMatch executes one complex matching pass over all configured cities.
func (s *Server) runMatch(ctx context.Context) {
	s.mu.Lock()
	if s.matchRunning {
		s.mu.Unlock()
		s.logger.Println("Complex matcher already running, skipping...")
		return
	}
	s.matchRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.matchRunning = false
		s.lastMatchRun = time.Now()
		s.matchRuns++
		s.mu.Unlock()
	}()

	for _, city := range s.matchCities {
		report, err := s.matcher.Run(ctx, city)
		if err != nil {
			s.logger.Printf("Complex matcher error for %s: %v", city, err)
			continue
		}

		s.mu.Lock()
		s.listingsLinked += report.Matched
		s.mu.Unlock()

		s.logger.Printf("Complex matcher for %s: scanned %d, matched %d, skipped %d in %v",
			city, report.Scanned, report.Matched, report.Skipped, report.Duration)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	LastSweepRun   time.Time `json:"last_sweep_run,omitempty"`
	LastMatchRun   time.Time `json:"last_match_run,omitempty"`
	SweepRuns      int       `json:"sweep_runs"`
	MatchRuns      int       `json:"match_runs"`
	EntriesSwept   int       `json:"entries_swept"`
	ListingsLinked int       `json:"listings_linked"`
	MatchRunning   bool      `json:"match_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.started).String(),
		LastSweepRun:   s.lastSweepRun,
		LastMatchRun:   s.lastMatchRun,
		SweepRuns:      s.sweepRuns,
		MatchRuns:      s.matchRuns,
		EntriesSwept:   s.entriesSwept,
		ListingsLinked: s.listingsLinked,
		MatchRunning:   s.matchRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// splitList splits a comma-separated flag value.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOr returns the environment value or a default when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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

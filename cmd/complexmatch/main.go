// Package main provides the batch complex matcher entry point.
// Scans unresolved listings page by page and links them to known
// residential complexes by name similarity.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"estate-valuation/internal/batch"
	"estate-valuation/internal/matching"
	"estate-valuation/internal/storage/migrations"
	pgstore "estate-valuation/internal/storage/postgres"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	city := flag.String("city", "", "City to match listings in (required)")
	pageSize := flag.Int("page-size", batch.DefaultPageSize, "Listings per page")
	minConfidence := flag.Float64("min-confidence", matching.DefaultMinComplexConfidence, "Minimum match confidence")
	progressCadence := flag.Int("progress-cadence", batch.DefaultProgressCadence, "Log progress every N scanned listings")
	flag.Parse()

	logger := log.New(os.Stdout, "[complexmatch] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *city == "" {
		logger.Fatal("--city is required")
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	matcher := batch.NewComplexMatcher(
		pgstore.NewListingStore(pool),
		pgstore.NewComplexStore(pool),
		pgstore.NewStreetStore(pool),
		*pageSize,
		*minConfidence,
		*progressCadence,
		logger,
	)

	report, err := matcher.Run(ctx, *city)
	if err != nil {
		logger.Fatalf("Matcher error: %v", err)
	}

	fmt.Printf("Complex matching completed for %s:\n", *city)
	fmt.Printf("  Scanned: %d\n", report.Scanned)
	fmt.Printf("  Matched: %d\n", report.Matched)
	fmt.Printf("  Streets: %d\n", report.StreetsLinked)
	fmt.Printf("  Skipped: %d\n", report.Skipped)
	fmt.Printf("  Pages:   %d\n", report.Pages)
	fmt.Printf("  Took:    %v\n", report.Duration)
}

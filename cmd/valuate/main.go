// Package main provides a one-off valuation CLI. Resolves a listing by
// UUID, source-local id, or URL and prints its fair-price report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/lookup"
	"estate-valuation/internal/storage/migrations"
	pgstore "estate-valuation/internal/storage/postgres"
	"estate-valuation/internal/valuation"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	source := flag.String("source", "", "Source namespace for numeric ids (vector, aggregator, vector_crm)")
	fresh := flag.Bool("fresh", false, "Invalidate any cached report and recompute")
	flag.Parse()

	logger := log.New(os.Stderr, "[valuate] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if flag.NArg() != 1 {
		logger.Fatal("usage: valuate [flags] <listing uuid | source id | url>")
	}
	raw := flag.Arg(0)

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	listings := pgstore.NewListingStore(pool)
	resolver := lookup.NewResolver(listings)

	listing, err := resolver.Resolve(ctx, raw, domain.SourceType(*source))
	if err != nil {
		logger.Fatalf("Failed to resolve %q: %v", raw, err)
	}

	svc := valuation.NewService(
		listings,
		pgstore.NewStreetStore(pool),
		pgstore.NewValuationCacheStore(pool),
		nil,
		logger,
		time.Now,
	)

	if *fresh {
		if err := svc.Invalidate(ctx, listing.ListingID); err != nil {
			logger.Fatalf("Failed to invalidate cache: %v", err)
		}
	}

	report, err := svc.GetFairPrice(ctx, listing.ListingID)
	if err != nil {
		logger.Fatalf("Valuation failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatalf("Failed to encode report: %v", err)
	}

	fmt.Fprintf(os.Stderr, "verdict: %s, analogs used: %d\n", report.FairPrice.Verdict, report.Analogs.Used)
}

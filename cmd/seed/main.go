// Package main provides the reference data seeder. Loads streets,
// residential complexes, and listing snapshots from JSON dumps into
// PostgreSQL. Safe to rerun: record ids are derived from content.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"estate-valuation/internal/seed"
	"estate-valuation/internal/storage/migrations"
	pgstore "estate-valuation/internal/storage/postgres"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	streetsPath := flag.String("streets", "", "Path to a streets JSON dump")
	complexesPath := flag.String("complexes", "", "Path to a residential complexes JSON dump")
	listingsPath := flag.String("listings", "", "Path to a listings JSON dump")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *streetsPath == "" && *complexesPath == "" && *listingsPath == "" {
		logger.Fatal("Nothing to load. Use --streets, --complexes, or --listings")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	loader := seed.NewLoader(
		pgstore.NewStreetStore(pool),
		pgstore.NewComplexStore(pool),
		pgstore.NewListingStore(pool),
		time.Now,
		logger,
	)

	var report seed.Report
	started := time.Now()

	// Streets first so complex records can link against them.
	if *streetsPath != "" {
		var records []seed.StreetRecord
		if err := decodeFile(*streetsPath, &records); err != nil {
			logger.Fatalf("Failed to read streets dump: %v", err)
		}
		loaded, skipped, err := loader.LoadStreets(ctx, records)
		if err != nil {
			logger.Fatalf("Failed to load streets: %v", err)
		}
		report.Streets = loaded
		report.Skipped += skipped
	}

	if *complexesPath != "" {
		var records []seed.ComplexRecord
		if err := decodeFile(*complexesPath, &records); err != nil {
			logger.Fatalf("Failed to read complexes dump: %v", err)
		}
		loaded, skipped, err := loader.LoadComplexes(ctx, records)
		if err != nil {
			logger.Fatalf("Failed to load complexes: %v", err)
		}
		report.Complexes = loaded
		report.Skipped += skipped
	}

	if *listingsPath != "" {
		var records []seed.ListingRecord
		if err := decodeFile(*listingsPath, &records); err != nil {
			logger.Fatalf("Failed to read listings dump: %v", err)
		}
		loaded, skipped, err := loader.LoadListings(ctx, records)
		if err != nil {
			logger.Fatalf("Failed to load listings: %v", err)
		}
		report.Listings = loaded
		report.Skipped += skipped
	}

	fmt.Printf("Seed completed:\n")
	fmt.Printf("  Streets:   %d\n", report.Streets)
	fmt.Printf("  Complexes: %d\n", report.Complexes)
	fmt.Printf("  Listings:  %d\n", report.Listings)
	fmt.Printf("  Skipped:   %d\n", report.Skipped)
	fmt.Printf("  Took:      %v\n", time.Since(started))
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

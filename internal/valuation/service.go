// Package valuation computes fair-price and liquidity reports for
// listings, with a 24-hour cache in front of the computation.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/observability"
	"estate-valuation/internal/stats"
	"estate-valuation/internal/storage"
)

// Service answers fair-price queries. Reads go through the cache first;
// on a miss the report is computed from analog listings, persisted to
// the cache and mirrored into the price observation history.
type Service struct {
	listings storage.ListingStore
	streets  storage.StreetStore
	cache    storage.ValuationCacheStore
	obs      storage.PriceObservationStore // optional, may be nil
	logger   *log.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]*computeGuard
}

// computeGuard serializes valuation of one listing. Refcounted so the
// map entry is dropped once the last waiter releases.
type computeGuard struct {
	sync.Mutex
	refs int
}

// NewService wires a Service. obs may be nil when no analytical sink is
// configured. now may be nil to use time.Now.
func NewService(listings storage.ListingStore, streets storage.StreetStore, cache storage.ValuationCacheStore, obs storage.PriceObservationStore, logger *log.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		listings: listings,
		streets:  streets,
		cache:    cache,
		obs:      obs,
		logger:   logger,
		now:      now,
		inFlight: make(map[string]*computeGuard),
	}
}

// GetFairPrice returns the valuation report for a listing, computing it
// if no fresh cached report exists. Concurrent calls for the same
// listing compute at most once.
func (s *Service) GetFairPrice(ctx context.Context, listingID string) (*domain.ValuationReport, error) {
	if entry, err := s.cache.Get(ctx, listingID); err == nil {
		observability.RecordCacheHit()
		return reportFromEntry(entry), nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("cache lookup for %s: %w", listingID, err)
	}
	observability.RecordCacheMiss()

	// Per-listing guard: the second caller waits, then rechecks the
	// cache the first caller just filled.
	guard := s.acquireGuard(listingID)
	defer s.releaseGuard(listingID, guard)

	if entry, err := s.cache.Get(ctx, listingID); err == nil {
		observability.RecordCacheHit()
		return reportFromEntry(entry), nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("cache lookup for %s: %w", listingID, err)
	}

	entry, err := s.compute(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return reportFromEntry(entry), nil
}

// Invalidate drops any cached report for the listing.
func (s *Service) Invalidate(ctx context.Context, listingID string) error {
	return s.cache.Invalidate(ctx, listingID)
}

func (s *Service) acquireGuard(listingID string) *computeGuard {
	s.mu.Lock()
	g, ok := s.inFlight[listingID]
	if !ok {
		g = &computeGuard{}
		s.inFlight[listingID] = g
	}
	g.refs++
	s.mu.Unlock()

	g.Lock()
	return g
}

func (s *Service) releaseGuard(listingID string, g *computeGuard) {
	g.Unlock()

	s.mu.Lock()
	g.refs--
	if g.refs == 0 {
		delete(s.inFlight, listingID)
	}
	s.mu.Unlock()
}

func (s *Service) compute(ctx context.Context, listingID string) (*domain.ValuationCacheEntry, error) {
	started := s.now()

	subject, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load subject %s: %w", listingID, err)
	}

	subjectPPM, ok := subject.PricePerMeter()
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", listingID, ErrMalformedSubject)
	}

	prices, total, err := SelectAnalogs(ctx, s.listings, subject)
	if err != nil {
		return nil, err
	}

	filtered := stats.FilterOutliers(prices)
	priceStats := stats.Calculate(filtered.Filtered)
	lower, upper := stats.Bounds(priceStats)

	verdict, explanation := Classify(subjectPPM, priceStats)
	if priceStats.Count == 0 {
		s.logger.Printf("listing %s: no usable analogs out of %d, defaulting verdict", listingID, total)
	}

	liquidity := ScoreLiquidity(subjectPPM, priceStats, priceStats.Count, s.streetDistance(ctx, subject))

	now := s.now()
	entry := &domain.ValuationCacheEntry{
		ListingID: listingID,
		Analogs: domain.AnalogsSummary{
			Total:         total,
			Used:          len(filtered.Filtered),
			Removed:       len(filtered.Removed),
			LowerBound:    lower,
			UpperBound:    upper,
			PricesPerM2:   true,
			ComplexScoped: subject.ComplexID != nil,
		},
		FairPrice: domain.FairPriceSnapshot{
			SubjectPrice: subjectPPM,
			Statistics:   priceStats,
			Verdict:      verdict,
			Explanation:  explanation,
		},
		Liquidity:    liquidity,
		CalculatedAt: now,
		ExpiresAt:    now.Add(domain.ValuationCacheTTL),
	}

	if err := s.cache.Set(ctx, entry); err != nil {
		return nil, fmt.Errorf("store valuation for %s: %w", listingID, err)
	}
	s.recordObservation(ctx, subject, subjectPPM, now)
	observability.RecordVerdict(string(verdict), priceStats.Count)
	observability.ObserveValuationDuration(s.now().Sub(started))
	return entry, nil
}

// streetDistance resolves the subject street's distance to the city
// center. Missing street or lookup failure degrades to unknown.
func (s *Service) streetDistance(ctx context.Context, subject *domain.UnifiedListing) *float64 {
	if subject.StreetID == nil {
		return nil
	}
	street, err := s.streets.GetByID(ctx, *subject.StreetID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("listing %s: street lookup failed: %v", subject.ListingID, err)
		}
		return nil
	}
	return street.DistanceKm
}

// recordObservation mirrors the subject's per-meter price into the
// analytical history. Failures are logged, not propagated: analytics
// must never break a valuation.
func (s *Service) recordObservation(ctx context.Context, subject *domain.UnifiedListing, ppm float64, now time.Time) {
	if s.obs == nil {
		return
	}
	complexID := ""
	if subject.ComplexID != nil {
		complexID = *subject.ComplexID
	}
	o := &domain.PriceObservation{
		ListingID:  subject.ListingID,
		Platform:   subject.Platform,
		City:       subject.City,
		ComplexID:  complexID,
		PricePerM2: ppm,
		ObservedAt: now.UnixMilli(),
	}
	if err := s.obs.InsertBulk(ctx, []*domain.PriceObservation{o}); err != nil {
		s.logger.Printf("listing %s: price observation insert failed: %v", subject.ListingID, err)
	}
}

// reportFromEntry expands a stored entry into the read-time report
// shape: the criteria breakdown and days-to-sell estimate are derived
// here, never persisted.
func reportFromEntry(e *domain.ValuationCacheEntry) *domain.ValuationReport {
	return &domain.ValuationReport{
		ListingID:           e.ListingID,
		Analogs:             e.Analogs,
		FairPrice:           e.FairPrice,
		Liquidity:           e.Liquidity,
		Breakdown:           domain.ExpandCriteria(e.Liquidity.Criteria),
		EstimatedDaysToSell: domain.EstimatedDaysToSell(e.Liquidity.Level),
		CalculatedAt:        e.CalculatedAt,
	}
}

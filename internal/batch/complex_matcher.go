// Package batch links unresolved listings to residential complexes in
// paginated bulk runs. Pages are processed strictly sequentially: one
// fetch and one bulk update outstanding at a time, so a crashed run
// resumes safely by rerunning from the start.
package batch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/matching"
	"estate-valuation/internal/observability"
	"estate-valuation/internal/storage"
	"estate-valuation/internal/textnorm"
)

// Defaults for batch job configuration.
const (
	DefaultPageSize        = 100
	DefaultProgressCadence = 500
	minSearchTextLen       = 10
)

// ComplexMatcher scans listings without a complex and assigns one when
// the title and description text match a known complex name. When a
// street store is supplied, the same pass also links street mentions in
// the text to canonical streets.
type ComplexMatcher struct {
	listings  storage.ListingStore
	complexes storage.ComplexStore
	streets   storage.StreetStore // nil disables street linking

	pageSize        int
	minConfidence   float64
	progressCadence int
	logger          *log.Logger
}

// MatchReport summarizes one batch run.
type MatchReport struct {
	Scanned       int // listings fetched
	Skipped       int // listings with too little text
	Matched       int // listings assigned a complex
	StreetsLinked int // listings assigned a street
	Pages         int
	Duration      time.Duration
}

// NewComplexMatcher creates a batch matcher. Non-positive pageSize and
// progressCadence fall back to defaults; a non-positive minConfidence
// falls back to the standard complex-matching threshold.
func NewComplexMatcher(listings storage.ListingStore, complexes storage.ComplexStore, streets storage.StreetStore, pageSize int, minConfidence float64, progressCadence int, logger *log.Logger) *ComplexMatcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if minConfidence <= 0 {
		minConfidence = matching.DefaultMinComplexConfidence
	}
	if progressCadence <= 0 {
		progressCadence = DefaultProgressCadence
	}
	return &ComplexMatcher{
		listings:        listings,
		complexes:       complexes,
		streets:         streets,
		pageSize:        pageSize,
		minConfidence:   minConfidence,
		progressCadence: progressCadence,
		logger:          logger,
	}
}

// Run processes all unresolved listings for a city. A page fetch or bulk
// update failure aborts the run; rerunning is safe because already-linked
// listings no longer match the unresolved filter.
func (m *ComplexMatcher) Run(ctx context.Context, city string) (*MatchReport, error) {
	started := time.Now()

	known, err := m.complexes.GetByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("load complexes for %s: %w", city, err)
	}

	var knownStreets []*domain.Street
	if m.streets != nil {
		knownStreets, err = m.streets.GetByCity(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("load streets for %s: %w", city, err)
		}
	}
	m.logger.Printf("batch match start: city=%s complexes=%d streets=%d page_size=%d", city, len(known), len(knownStreets), m.pageSize)

	report := &MatchReport{}
	lastReported := 0
	for offset := 0; ; offset += m.pageSize {
		page, err := m.listings.GetUnmatchedPage(ctx, offset, m.pageSize)
		if err != nil {
			observability.RecordBatchRun("failed", time.Since(started).Seconds())
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		complexAssignments, streetAssignments := m.matchPage(page, city, known, knownStreets, report)
		if len(complexAssignments) > 0 {
			if err := m.listings.UpdateComplexIDs(ctx, complexAssignments); err != nil {
				observability.RecordBatchRun("failed", time.Since(started).Seconds())
				return nil, fmt.Errorf("persist page at offset %d: %w", offset, err)
			}
			report.Matched += len(complexAssignments)
		}
		if len(streetAssignments) > 0 {
			if err := m.listings.UpdateStreetIDs(ctx, streetAssignments); err != nil {
				observability.RecordBatchRun("failed", time.Since(started).Seconds())
				return nil, fmt.Errorf("persist streets at offset %d: %w", offset, err)
			}
			report.StreetsLinked += len(streetAssignments)
		}
		report.Pages++
		report.Scanned += len(page)
		observability.RecordBatchPage(len(page), len(complexAssignments))

		final := len(page) < m.pageSize
		if report.Scanned-lastReported >= m.progressCadence || final {
			m.logger.Printf("batch match progress: scanned=%d matched=%d streets=%d skipped=%d", report.Scanned, report.Matched, report.StreetsLinked, report.Skipped)
			lastReported = report.Scanned
		}
		if final {
			break
		}
	}

	report.Duration = time.Since(started)
	observability.RecordBatchRun("ok", report.Duration.Seconds())
	m.logger.Printf("batch match done: scanned=%d matched=%d streets=%d skipped=%d pages=%d in %s",
		report.Scanned, report.Matched, report.StreetsLinked, report.Skipped, report.Pages, report.Duration.Round(time.Millisecond))
	return report, nil
}

// matchPage matches one page of listings and collects listing->complex and
// listing->street assignments. Listings whose city differs from the run's
// city are left for another run.
func (m *ComplexMatcher) matchPage(page []*domain.UnifiedListing, city string, known []*domain.ResidentialComplex, knownStreets []*domain.Street, report *MatchReport) (map[string]string, map[string]string) {
	complexAssignments := make(map[string]string)
	streetAssignments := make(map[string]string)
	for _, l := range page {
		if l.City != city {
			continue
		}
		text := SearchText(l)
		if textnorm.RuneLen(text) < minSearchTextLen {
			report.Skipped++
			continue
		}
		if match := matching.MatchComplex(text, known, m.minConfidence); match != nil {
			complexAssignments[l.ListingID] = match.Complex.ComplexID
			observability.RecordComplexMatch(string(match.Type))
		}
		if l.StreetID == nil && len(knownStreets) > 0 {
			if match := matching.MatchStreet(text, knownStreets); match != nil {
				streetAssignments[l.ListingID] = match.Street.StreetID
				observability.RecordStreetMatch(string(match.Type))
			}
		}
	}
	return complexAssignments, streetAssignments
}

// SearchText assembles the text a listing is matched on: title plus both
// description languages, whichever the platform supplied.
func SearchText(l *domain.UnifiedListing) string {
	if l.Primary == nil {
		return ""
	}
	f := l.Primary.Fields()
	parts := make([]string, 0, 3)
	for _, s := range []string{f.Title, f.DescriptionUK, f.DescriptionRU} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

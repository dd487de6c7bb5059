package valuation

import (
	"context"
	"fmt"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// maxSanePricePerM2 is the upper sanity bound on a per-meter price.
// Some sources use large placeholder prices for land listings without
// area; anything at or above this bound is excluded from the sample.
const maxSanePricePerM2 = 500000

// SelectAnalogs loads comparable listings for the subject and reduces
// them to usable per-meter prices. Listings without a price or area,
// and listings whose per-meter price trips the sanity bound, are
// silently skipped.
func SelectAnalogs(ctx context.Context, listings storage.ListingStore, subject *domain.UnifiedListing) ([]float64, int, error) {
	analogs, err := listings.GetAnalogs(ctx, subject)
	if err != nil {
		return nil, 0, fmt.Errorf("load analogs for %s: %w", subject.ListingID, err)
	}

	prices := make([]float64, 0, len(analogs))
	for _, a := range analogs {
		ppm, ok := a.PricePerMeter()
		if !ok {
			continue
		}
		if ppm >= maxSanePricePerM2 {
			continue
		}
		prices = append(prices, ppm)
	}
	return prices, len(analogs), nil
}

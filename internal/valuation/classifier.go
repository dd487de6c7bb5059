package valuation

import (
	"fmt"
	"math"

	"estate-valuation/internal/domain"
)

const (
	// Ratio bounds for the verdict bands. Both bounds are exclusive:
	// a subject priced at exactly 90% or 110% of the median is in market.
	cheapRatioBound     = 0.9
	expensiveRatioBound = 1.1
)

// Classify compares the subject price against the analog median and
// assigns a verdict band. A zero median means the analog sample carried
// no usable prices, in which case the subject defaults to in market.
func Classify(subjectPrice float64, stats domain.PriceStatistics) (domain.Verdict, string) {
	if stats.Median == 0 {
		return domain.VerdictInMarket, "no comparable prices available, assuming market level"
	}

	ratio := subjectPrice / stats.Median
	deviation := math.Abs(ratio-1) * 100

	switch {
	case ratio < cheapRatioBound:
		return domain.VerdictCheap, fmt.Sprintf("price is %.1f%% below the market median", deviation)
	case ratio > expensiveRatioBound:
		return domain.VerdictExpensive, fmt.Sprintf("price is %.1f%% above the market median", deviation)
	default:
		return domain.VerdictInMarket, fmt.Sprintf("price is within %.1f%% of the market median", deviation)
	}
}

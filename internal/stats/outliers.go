package stats

import (
	"math"

	"estate-valuation/internal/domain"
)

const (
	// iqrMultiplier defines the normal/outlier boundary around the
	// interquartile range.
	iqrMultiplier = 1.5

	// minFilterSample is the smallest sample worth judging outliers on,
	// and the smallest number of survivors a filtering pass may leave.
	// The boundary is a contract: downstream verdicts on sparse analog
	// pools depend on it.
	minFilterSample = 3
)

// FilterResult partitions a price sample into survivors and removed
// outliers.
type FilterResult struct {
	Filtered []float64
	Removed  []float64
}

// FilterOutliers removes prices outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// Samples of minFilterSample or fewer pass through untouched. If filtering
// would leave fewer than minFilterSample survivors, the original sample is
// returned unfiltered so the statistic cannot collapse on small, naturally
// skewed pools.
func FilterOutliers(prices []float64) FilterResult {
	if len(prices) <= minFilterSample {
		return FilterResult{Filtered: prices, Removed: nil}
	}

	s := Calculate(prices)
	lower, upper := Bounds(s)

	filtered := make([]float64, 0, len(prices))
	var removed []float64
	for _, p := range prices {
		if p >= lower && p <= upper {
			filtered = append(filtered, p)
		} else {
			removed = append(removed, p)
		}
	}

	if len(filtered) < minFilterSample {
		return FilterResult{Filtered: prices, Removed: nil}
	}
	return FilterResult{Filtered: filtered, Removed: removed}
}

// Bounds exposes the outlier boundary for external reporting, rounded like
// every other statistic.
func Bounds(s domain.PriceStatistics) (lower, upper float64) {
	lower = math.Round(s.Q1 - iqrMultiplier*s.IQR)
	upper = math.Round(s.Q3 + iqrMultiplier*s.IQR)
	return lower, upper
}

// Package stats computes outlier-resistant price statistics over analog
// samples. Display-grade precision: every returned field is rounded to the
// nearest integer.
package stats

import (
	"math"
	"sort"

	"estate-valuation/internal/domain"
)

// Calculate computes the full statistics record for a price sample.
// The input is never mutated; an empty sample yields all zeros.
func Calculate(prices []float64) domain.PriceStatistics {
	n := len(prices)
	if n == 0 {
		return domain.PriceStatistics{}
	}

	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)

	return domain.PriceStatistics{
		Median:  math.Round(median(sorted)),
		Average: math.Round(sum / float64(n)),
		Min:     math.Round(sorted[0]),
		Max:     math.Round(sorted[n-1]),
		Q1:      math.Round(q1),
		Q3:      math.Round(q3),
		IQR:     math.Round(q3 - q1),
		Count:   n,
	}
}

// median averages the two central values for even counts.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// percentile uses the linear-interpolation rank method: the continuous
// index (p/100)*(n-1), interpolating between neighbors when fractional.
// sorted must be pre-sorted ascending.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := (p / 100) * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Percentile exposes the interpolated percentile over an already sorted
// sample for external reporting.
func Percentile(sorted []float64, p float64) float64 {
	return percentile(sorted, p)
}

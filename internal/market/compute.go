package market

import (
	"math"
	"sort"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/stats"
)

// computeFromObservations calculates the summary body from a non-empty
// observation slice. Observations are sorted by ObservedAt ASC, ListingID
// ASC before the order-dependent daily series is built.
func computeFromObservations(obs []*domain.PriceObservation) *domain.MarketSummary {
	sorted := make([]*domain.PriceObservation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ObservedAt != sorted[j].ObservedAt {
			return sorted[i].ObservedAt < sorted[j].ObservedAt
		}
		return sorted[i].ListingID < sorted[j].ListingID
	})

	prices := make([]float64, len(sorted))
	listings := make(map[string]struct{})
	byDay := make(map[string][]float64)
	for i, o := range sorted {
		prices[i] = o.PricePerM2
		listings[o.ListingID] = struct{}{}
		day := time.UnixMilli(o.ObservedAt).UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], o.PricePerM2)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]domain.DailyMedian, len(days))
	for i, day := range days {
		sample := byDay[day]
		sort.Float64s(sample)
		daily[i] = domain.DailyMedian{
			Day:    day,
			Median: math.Round(stats.Percentile(sample, 50)),
			Count:  len(sample),
		}
	}

	return &domain.MarketSummary{
		Observations: len(sorted),
		Listings:     len(listings),
		Statistics:   stats.Calculate(prices),
		Daily:        daily,
		TrendPct:     computeTrendPct(daily),
	}
}

// computeTrendPct compares the first and last daily medians, as a percent
// change rounded to two decimals. A single day has no trend.
func computeTrendPct(daily []domain.DailyMedian) float64 {
	if len(daily) < 2 {
		return 0
	}
	first := daily[0].Median
	last := daily[len(daily)-1].Median
	if first == 0 {
		return 0
	}
	return math.Round((last-first)/first*10000) / 100
}

package domain

import (
	"sort"
	"time"
)

// Verdict classifies a subject price against the analog median.
type Verdict string

const (
	VerdictCheap     Verdict = "cheap"
	VerdictInMarket  Verdict = "in_market"
	VerdictExpensive Verdict = "expensive"
)

// LiquidityLevel buckets the composite liquidity score.
type LiquidityLevel string

const (
	LiquidityHigh   LiquidityLevel = "high"
	LiquidityMedium LiquidityLevel = "medium"
	LiquidityLow    LiquidityLevel = "low"
)

// ValuationCacheTTL is how long a computed report stays valid.
const ValuationCacheTTL = 24 * time.Hour

// CriterionScore is one stored liquidity criterion. The cache persists the
// name->CriterionScore map; weighted scores are derived at read time.
type CriterionScore struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// CriterionBreakdown is the expanded, read-time view of one criterion.
type CriterionBreakdown struct {
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}

// AnalogsSummary describes the comparable pool a fair price was derived from.
type AnalogsSummary struct {
	Total         int     `json:"total"`
	Used          int     `json:"used"`
	Removed       int     `json:"removed"`
	LowerBound    float64 `json:"lower_bound"`
	UpperBound    float64 `json:"upper_bound"`
	PricesPerM2   bool    `json:"prices_per_m2"`
	ComplexScoped bool    `json:"complex_scoped"`
}

// FairPriceSnapshot is the price part of a valuation report.
type FairPriceSnapshot struct {
	SubjectPrice float64         `json:"subject_price"`
	Statistics   PriceStatistics `json:"statistics"`
	Verdict      Verdict         `json:"verdict"`
	Explanation  string          `json:"explanation"`
}

// LiquiditySnapshot is the liquidity part of a valuation report.
type LiquiditySnapshot struct {
	Score    float64                   `json:"score"`
	Level    LiquidityLevel            `json:"level"`
	Criteria map[string]CriterionScore `json:"criteria"`
}

// ValuationReport is the assembled fair-price and liquidity report for one
// listing. EstimatedDaysToSell and the criteria breakdown list are derived
// at read time and not persisted.
type ValuationReport struct {
	ListingID           string               `json:"listing_id"`
	Analogs             AnalogsSummary       `json:"analogs"`
	FairPrice           FairPriceSnapshot    `json:"fair_price"`
	Liquidity           LiquiditySnapshot    `json:"liquidity"`
	Breakdown           []CriterionBreakdown `json:"breakdown"`
	EstimatedDaysToSell int                  `json:"estimated_days_to_sell"`
	CalculatedAt        time.Time            `json:"calculated_at"`
}

// ValuationCacheEntry is the persisted form of a report.
// Invariant: ExpiresAt = CalculatedAt + ValuationCacheTTL. An entry observed
// past ExpiresAt is treated as absent and deleted on read.
type ValuationCacheEntry struct {
	ListingID    string
	Analogs      AnalogsSummary
	FairPrice    FairPriceSnapshot
	Liquidity    LiquiditySnapshot
	CalculatedAt time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e *ValuationCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// EstimatedDaysToSell maps a liquidity level to a rough days-to-sell
// estimate. Unrecognized levels fall back to 90.
func EstimatedDaysToSell(level LiquidityLevel) int {
	switch level {
	case LiquidityHigh:
		return 30
	case LiquidityMedium:
		return 60
	case LiquidityLow:
		return 120
	default:
		return 90
	}
}

// ExpandCriteria derives the breakdown list from the stored criteria map,
// ordered by criterion name. WeightedScore is recomputed here so it can
// never drift from score/weight.
func ExpandCriteria(criteria map[string]CriterionScore) []CriterionBreakdown {
	out := make([]CriterionBreakdown, 0, len(criteria))
	for name, c := range criteria {
		out = append(out, CriterionBreakdown{
			Name:          name,
			Score:         c.Score,
			Weight:        c.Weight,
			WeightedScore: c.Weight * c.Score,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PriceObservation is one per-meter price point captured for market
// analytics. Corresponds to the price_observations table in ClickHouse.
type PriceObservation struct {
	ListingID   string
	Platform    Platform
	City        string
	ComplexID   string // empty when the listing is unresolved
	PricePerM2  float64
	ObservedAt  int64 // Unix timestamp in milliseconds
}

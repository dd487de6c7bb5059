package valuation

import (
	"estate-valuation/internal/domain"
)

// Liquidity level thresholds on the composite score.
const (
	highLiquidityThreshold   = 0.7
	mediumLiquidityThreshold = 0.4
)

// Criterion weights. They sum to 1 so the composite score stays in [0, 1]
// as long as each individual score does.
const (
	priceWeight    = 0.45
	demandWeight   = 0.30
	locationWeight = 0.25
)

// ScoreLiquidity estimates how quickly the subject listing is likely to
// sell. Three criteria feed the composite score: how the asking price
// sits against the analog market, how many comparable listings exist
// (a proxy for demand in the segment), and how close the street is to
// the city center.
func ScoreLiquidity(subjectPrice float64, stats domain.PriceStatistics, analogCount int, distanceKm *float64) domain.LiquiditySnapshot {
	criteria := map[string]domain.CriterionScore{
		"price_position":  {Score: priceScore(subjectPrice, stats), Weight: priceWeight},
		"market_activity": {Score: demandScore(analogCount), Weight: demandWeight},
		"location":        {Score: locationScore(distanceKm), Weight: locationWeight},
	}

	var score float64
	for _, c := range criteria {
		score += c.Score * c.Weight
	}

	return domain.LiquiditySnapshot{
		Score:    score,
		Level:    levelFor(score),
		Criteria: criteria,
	}
}

func levelFor(score float64) domain.LiquidityLevel {
	switch {
	case score >= highLiquidityThreshold:
		return domain.LiquidityHigh
	case score >= mediumLiquidityThreshold:
		return domain.LiquidityMedium
	default:
		return domain.LiquidityLow
	}
}

// priceScore rewards listings priced at or below the market median.
// A listing at half the median scores 1, one at 150% or more scores 0.
func priceScore(subjectPrice float64, stats domain.PriceStatistics) float64 {
	if stats.Median == 0 || subjectPrice <= 0 {
		return 0.5
	}
	ratio := subjectPrice / stats.Median
	switch {
	case ratio <= 0.5:
		return 1
	case ratio >= 1.5:
		return 0
	default:
		return (1.5 - ratio) / 1.0
	}
}

// demandScore grows with the number of comparable listings, saturating
// at 20 analogs.
func demandScore(analogCount int) float64 {
	if analogCount <= 0 {
		return 0
	}
	if analogCount >= 20 {
		return 1
	}
	return float64(analogCount) / 20
}

// locationScore decays with distance from the city center. Streets
// within 2 km score 1, anything past 15 km scores 0. Unknown distance
// gets a neutral midpoint.
func locationScore(distanceKm *float64) float64 {
	if distanceKm == nil {
		return 0.5
	}
	d := *distanceKm
	switch {
	case d <= 2:
		return 1
	case d >= 15:
		return 0
	default:
		return (15 - d) / 13
	}
}

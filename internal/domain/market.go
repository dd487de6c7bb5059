package domain

import "time"

// DailyMedian is one day of per-meter price observations for a complex.
type DailyMedian struct {
	Day    string  `json:"day"` // YYYY-MM-DD, UTC
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// MarketSummary aggregates the recorded price observations of one complex
// over a trailing window.
type MarketSummary struct {
	ComplexID    string          `json:"complex_id"`
	WindowStart  time.Time       `json:"window_start"`
	WindowEnd    time.Time       `json:"window_end"`
	Observations int             `json:"observations"`
	Listings     int             `json:"listings"` // distinct listings observed
	Statistics   PriceStatistics `json:"statistics"`
	Daily        []DailyMedian   `json:"daily"`
	TrendPct     float64         `json:"trend_pct"` // first vs last daily median
}

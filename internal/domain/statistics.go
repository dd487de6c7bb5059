package domain

// PriceStatistics is the outlier-resistant summary of an analog price
// sample. All values are rounded to the nearest integer; recomputed per
// request, never persisted on its own.
type PriceStatistics struct {
	Median  float64 `json:"median"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	IQR     float64 `json:"iqr"`
	Count   int     `json:"count"`
}

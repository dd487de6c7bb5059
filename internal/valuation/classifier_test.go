package valuation

import (
	"strings"
	"testing"

	"estate-valuation/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		subject float64
		median  float64
		want    domain.Verdict
	}{
		{"well below market", 100000, 120000, domain.VerdictCheap},
		{"well above market", 150000, 120000, domain.VerdictExpensive},
		{"at market", 120000, 120000, domain.VerdictInMarket},
		{"exactly 90 percent", 90, 100, domain.VerdictInMarket},
		{"exactly 110 percent", 110, 100, domain.VerdictInMarket},
		{"just under 90 percent", 89.99, 100, domain.VerdictCheap},
		{"just over 110 percent", 110.01, 100, domain.VerdictExpensive},
		{"zero median defaults", 100000, 0, domain.VerdictInMarket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, explanation := Classify(tt.subject, domain.PriceStatistics{Median: tt.median})
			if got != tt.want {
				t.Errorf("Classify(%v, median=%v) = %s, want %s", tt.subject, tt.median, got, tt.want)
			}
			if explanation == "" {
				t.Errorf("Classify(%v, median=%v) returned empty explanation", tt.subject, tt.median)
			}
		})
	}
}

func TestClassify_ExplanationDeviation(t *testing.T) {
	_, explanation := Classify(100000, domain.PriceStatistics{Median: 120000})
	// 100000/120000 is 16.7% below median.
	if !strings.Contains(explanation, "16.7%") {
		t.Errorf("explanation %q does not report the deviation", explanation)
	}
	if !strings.Contains(explanation, "below") {
		t.Errorf("explanation %q not phrased for a cheap verdict", explanation)
	}
}

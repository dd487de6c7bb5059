package stats

import (
	"testing"
)

func TestFilterOutliers_RemovesHighOutlier(t *testing.T) {
	prices := []float64{80, 90, 100, 100, 110, 120, 500}

	res := FilterOutliers(prices)
	if len(res.Filtered) != 6 {
		t.Fatalf("expected 6 survivors, got %d: %v", len(res.Filtered), res.Filtered)
	}
	if len(res.Removed) != 1 || res.Removed[0] != 500 {
		t.Fatalf("expected [500] removed, got %v", res.Removed)
	}
	for _, p := range res.Filtered {
		if p == 500 {
			t.Error("outlier survived filtering")
		}
	}
}

func TestFilterOutliers_SmallSamplePassThrough(t *testing.T) {
	for _, prices := range [][]float64{
		nil,
		{100},
		{100, 5000},
		{1, 100, 10000},
	} {
		res := FilterOutliers(prices)
		if len(res.Filtered) != len(prices) {
			t.Errorf("sample %v: expected pass-through, got %v", prices, res.Filtered)
		}
		if len(res.Removed) != 0 {
			t.Errorf("sample %v: expected nothing removed, got %v", prices, res.Removed)
		}
	}
}

func TestFilterOutliers_NeverCollapsesSample(t *testing.T) {
	// The safety valve guarantees a sample of 3+ values never shrinks
	// below 3 survivors, whatever the spread.
	samples := [][]float64{
		{1, 1, 100000, 100000},
		{1, 100, 100, 100000},
		{5, 100, 100, 101, 100000},
		{1, 2, 3, 4, 5, 1000000},
		{100, 100, 100, 100, 100},
	}

	for _, prices := range samples {
		res := FilterOutliers(prices)
		if len(res.Filtered) < minFilterSample {
			t.Errorf("sample %v collapsed to %v", prices, res.Filtered)
		}
		if len(res.Filtered)+len(res.Removed) != len(prices) {
			t.Errorf("sample %v: filtered+removed does not partition input", prices)
		}
	}
}

func TestFilterOutliers_IdempotentOnOwnOutput(t *testing.T) {
	prices := []float64{80, 90, 100, 100, 110, 120, 500}

	first := FilterOutliers(prices)
	if len(first.Filtered) < 3 {
		t.Fatal("test premise broken: first pass left fewer than 3")
	}

	second := FilterOutliers(first.Filtered)
	if len(second.Filtered) != len(first.Filtered) {
		t.Errorf("second pass changed the sample: %v -> %v", first.Filtered, second.Filtered)
	}
	if len(second.Removed) != 0 {
		t.Errorf("second pass removed %v", second.Removed)
	}
}

func TestBounds_Rounded(t *testing.T) {
	s := Calculate([]float64{80, 90, 100, 100, 110, 120, 500})
	lower, upper := Bounds(s)

	if lower != s.Q1-1.5*s.IQR && lower != float64(int(lower)) {
		t.Errorf("lower bound not rounded: %v", lower)
	}
	if lower >= upper {
		t.Errorf("bounds inverted: [%v, %v]", lower, upper)
	}
	// The sole outlier sits above the upper bound.
	if upper >= 500 {
		t.Errorf("upper bound %v should exclude 500", upper)
	}
}

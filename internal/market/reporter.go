// Package market aggregates recorded price observations into per-complex
// market summaries.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// ErrNoObservations is returned when the window holds no observations.
var ErrNoObservations = errors.New("no price observations in window")

const (
	// DefaultWindowDays is the trailing window when none is requested.
	DefaultWindowDays = 30
	maxWindowDays     = 365
)

// Reporter computes market summaries from price observations.
type Reporter struct {
	observations storage.PriceObservationStore
	complexes    storage.ComplexStore
	now          func() time.Time
}

// NewReporter creates a new market Reporter.
func NewReporter(observations storage.PriceObservationStore, complexes storage.ComplexStore, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		observations: observations,
		complexes:    complexes,
		now:          now,
	}
}

// Summary computes the market summary for one complex over the trailing
// window. A non-positive window falls back to DefaultWindowDays; windows
// longer than a year are clamped. Returns storage.ErrNotFound for an
// unknown complex and ErrNoObservations for an empty window.
func (r *Reporter) Summary(ctx context.Context, complexID string, windowDays int) (*domain.MarketSummary, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays > maxWindowDays {
		windowDays = maxWindowDays
	}

	if _, err := r.complexes.GetByID(ctx, complexID); err != nil {
		return nil, fmt.Errorf("load complex %s: %w", complexID, err)
	}

	end := r.now()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)

	obs, err := r.observations.GetByComplexID(ctx, complexID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load observations for %s: %w", complexID, err)
	}
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	summary := computeFromObservations(obs)
	summary.ComplexID = complexID
	summary.WindowStart = start
	summary.WindowEnd = end
	return summary, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// PriceObservationStore is an in-memory implementation of
// storage.PriceObservationStore.
type PriceObservationStore struct {
	mu   sync.RWMutex
	data []*domain.PriceObservation
}

// NewPriceObservationStore creates a new in-memory observation store.
func NewPriceObservationStore() *PriceObservationStore {
	return &PriceObservationStore{}
}

// InsertBulk appends observations.
func (s *PriceObservationStore) InsertBulk(_ context.Context, obs []*domain.PriceObservation) error {
	for _, o := range obs {
		if o == nil || o.ListingID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range obs {
		obsCopy := *o
		s.data = append(s.data, &obsCopy)
	}
	return nil
}

// GetByComplexID retrieves observations for a complex within [start, end]
// (inclusive), ordered by observed_at ASC.
func (s *PriceObservationStore) GetByComplexID(_ context.Context, complexID string, start, end time.Time) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.ComplexID == complexID && o.ObservedAt >= startMs && o.ObservedAt <= endMs {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

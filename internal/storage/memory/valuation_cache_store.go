package memory

import (
	"context"
	"sync"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/observability"
	"estate-valuation/internal/storage"
)

// ValuationCacheStore is an in-memory implementation of
// storage.ValuationCacheStore. Expired entries are removed lazily on
// read; CleanupExpired sweeps the rest.
type ValuationCacheStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ValuationCacheEntry // keyed by listing_id
	now  func() time.Time
}

// NewValuationCacheStore creates a new in-memory cache store.
func NewValuationCacheStore() *ValuationCacheStore {
	return &ValuationCacheStore{
		data: make(map[string]*domain.ValuationCacheEntry),
		now:  time.Now,
	}
}

// NewValuationCacheStoreWithClock creates a cache store with an injected
// clock, for tests that need to move time.
func NewValuationCacheStoreWithClock(now func() time.Time) *ValuationCacheStore {
	return &ValuationCacheStore{
		data: make(map[string]*domain.ValuationCacheEntry),
		now:  now,
	}
}

// Get retrieves a cached entry. An expired entry is deleted and reported
// as ErrNotFound.
func (s *ValuationCacheStore) Get(_ context.Context, listingID string) (*domain.ValuationCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[listingID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	if e.Expired(s.now()) {
		delete(s.data, listingID)
		observability.RecordCacheExpired()
		return nil, storage.ErrNotFound
	}

	entryCopy := copyEntry(e)
	return entryCopy, nil
}

// Set stores an entry, replacing any previous one for the listing.
func (s *ValuationCacheStore) Set(_ context.Context, e *domain.ValuationCacheEntry) error {
	if e == nil || e.ListingID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[e.ListingID] = copyEntry(e)
	return nil
}

// Invalidate removes the entry for a listing, if present.
func (s *ValuationCacheStore) Invalidate(_ context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, listingID)
	return nil
}

// CleanupExpired removes all entries past their expiry as of now.
func (s *ValuationCacheStore) CleanupExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.data {
		if e.Expired(now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

// copyEntry deep-copies a cache entry, including the criteria map.
func copyEntry(e *domain.ValuationCacheEntry) *domain.ValuationCacheEntry {
	entryCopy := *e
	if e.Liquidity.Criteria != nil {
		criteria := make(map[string]domain.CriterionScore, len(e.Liquidity.Criteria))
		for k, v := range e.Liquidity.Criteria {
			criteria[k] = v
		}
		entryCopy.Liquidity.Criteria = criteria
	}
	return &entryCopy
}

// Verify interface compliance at compile time.
var _ storage.ValuationCacheStore = (*ValuationCacheStore)(nil)

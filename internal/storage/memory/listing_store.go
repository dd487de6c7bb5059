package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// ListingStore is an in-memory implementation of storage.ListingStore.
type ListingStore struct {
	mu   sync.RWMutex
	data map[string]*domain.UnifiedListing // keyed by listing_id
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		data: make(map[string]*domain.UnifiedListing),
	}
}

// Insert adds a new listing. Returns ErrDuplicateKey if listing_id exists.
func (s *ListingStore) Insert(_ context.Context, l *domain.UnifiedListing) error {
	if l == nil || l.ListingID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.ListingID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	listingCopy := *l
	s.data[l.ListingID] = &listingCopy
	return nil
}

// GetByID retrieves a listing by its ID. Returns ErrNotFound if not exists.
func (s *ListingStore) GetByID(_ context.Context, listingID string) (*domain.UnifiedListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[listingID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	listingCopy := *l
	return &listingCopy, nil
}

// GetBySourceID retrieves a listing by source namespace and source-local ID.
func (s *ListingStore) GetBySourceID(_ context.Context, source domain.SourceType, sourceID int64) (*domain.UnifiedListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.data {
		if l.SourceType == source && l.SourceID == sourceID {
			listingCopy := *l
			return &listingCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByExternalURL retrieves a listing by its external URL.
func (s *ListingStore) GetByExternalURL(_ context.Context, url string) (*domain.UnifiedListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.data {
		if l.ExternalURL == url {
			listingCopy := *l
			return &listingCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// SearchByURLSubstring retrieves listings whose URL contains the fragment,
// case-insensitively, ordered by listing_id.
func (s *ListingStore) SearchByURLSubstring(_ context.Context, fragment string) ([]*domain.UnifiedListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(fragment)
	var result []*domain.UnifiedListing
	for _, l := range s.data {
		if strings.Contains(strings.ToLower(l.ExternalURL), needle) {
			listingCopy := *l
			result = append(result, &listingCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ListingID < result[j].ListingID
	})

	return result, nil
}

// GetAnalogs retrieves listings comparable to the subject: same city and
// deal type, same complex when the subject has one, excluding the subject.
func (s *ListingStore) GetAnalogs(_ context.Context, subject *domain.UnifiedListing) ([]*domain.UnifiedListing, error) {
	if subject == nil {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UnifiedListing
	for _, l := range s.data {
		if l.ListingID == subject.ListingID {
			continue
		}
		if l.City != subject.City || l.DealType != subject.DealType {
			continue
		}
		if subject.ComplexID != nil {
			if l.ComplexID == nil || *l.ComplexID != *subject.ComplexID {
				continue
			}
		}
		listingCopy := *l
		result = append(result, &listingCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ListingID < result[j].ListingID
	})

	return result, nil
}

// GetUnmatchedPage retrieves listings with no complex assigned, ordered by
// listing_id, for batch matching.
func (s *ListingStore) GetUnmatchedPage(_ context.Context, offset, limit int) ([]*domain.UnifiedListing, error) {
	if offset < 0 || limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var unmatched []*domain.UnifiedListing
	for _, l := range s.data {
		if l.ComplexID == nil {
			unmatched = append(unmatched, l)
		}
	}
	sort.Slice(unmatched, func(i, j int) bool {
		return unmatched[i].ListingID < unmatched[j].ListingID
	})

	if offset >= len(unmatched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(unmatched) {
		end = len(unmatched)
	}

	page := make([]*domain.UnifiedListing, 0, end-offset)
	for _, l := range unmatched[offset:end] {
		listingCopy := *l
		page = append(page, &listingCopy)
	}
	return page, nil
}

// UpdateComplexIDs assigns complexes to listings in bulk.
func (s *ListingStore) UpdateComplexIDs(_ context.Context, assignments map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for listingID, complexID := range assignments {
		l, exists := s.data[listingID]
		if !exists {
			return storage.ErrNotFound
		}
		id := complexID
		l.ComplexID = &id
	}
	return nil
}

// UpdateStreetIDs assigns streets to listings in bulk.
func (s *ListingStore) UpdateStreetIDs(_ context.Context, assignments map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for listingID, streetID := range assignments {
		l, exists := s.data[listingID]
		if !exists {
			return storage.ErrNotFound
		}
		id := streetID
		l.StreetID = &id
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.ListingStore = (*ListingStore)(nil)

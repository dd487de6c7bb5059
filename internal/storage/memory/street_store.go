package memory

import (
	"context"
	"sort"
	"sync"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// StreetStore is an in-memory implementation of storage.StreetStore.
type StreetStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Street // keyed by street_id
}

// NewStreetStore creates a new in-memory street store.
func NewStreetStore() *StreetStore {
	return &StreetStore{
		data: make(map[string]*domain.Street),
	}
}

// Insert adds a new street. Returns ErrDuplicateKey if street_id exists.
func (s *StreetStore) Insert(_ context.Context, st *domain.Street) error {
	if st == nil || st.StreetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[st.StreetID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[st.StreetID] = copyStreet(st)
	return nil
}

// GetByID retrieves a street by its ID. Returns ErrNotFound if not exists.
func (s *StreetStore) GetByID(_ context.Context, streetID string) (*domain.Street, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.data[streetID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyStreet(st), nil
}

// GetByCity retrieves all streets in a city, ordered by street_id.
func (s *StreetStore) GetByCity(_ context.Context, city string) ([]*domain.Street, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Street
	for _, st := range s.data {
		if st.City == city {
			result = append(result, copyStreet(st))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StreetID < result[j].StreetID
	})

	return result, nil
}

// copyStreet deep-copies a street, including its name variants.
func copyStreet(st *domain.Street) *domain.Street {
	streetCopy := *st
	streetCopy.Names = append([]domain.NameVariant(nil), st.Names...)
	if st.DistanceKm != nil {
		d := *st.DistanceKm
		streetCopy.DistanceKm = &d
	}
	return &streetCopy
}

// Verify interface compliance at compile time.
var _ storage.StreetStore = (*StreetStore)(nil)

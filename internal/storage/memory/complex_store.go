package memory

import (
	"context"
	"sort"
	"sync"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// ComplexStore is an in-memory implementation of storage.ComplexStore.
type ComplexStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ResidentialComplex // keyed by complex_id
}

// NewComplexStore creates a new in-memory complex store.
func NewComplexStore() *ComplexStore {
	return &ComplexStore{
		data: make(map[string]*domain.ResidentialComplex),
	}
}

// Insert adds a new complex. Returns ErrDuplicateKey if complex_id exists.
func (s *ComplexStore) Insert(_ context.Context, c *domain.ResidentialComplex) error {
	if c == nil || c.ComplexID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ComplexID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[c.ComplexID] = copyComplex(c)
	return nil
}

// GetByID retrieves a complex by its ID. Returns ErrNotFound if not exists.
func (s *ComplexStore) GetByID(_ context.Context, complexID string) (*domain.ResidentialComplex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[complexID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyComplex(c), nil
}

// GetByCity retrieves all complexes in a city, ordered by complex_id.
func (s *ComplexStore) GetByCity(_ context.Context, city string) ([]*domain.ResidentialComplex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResidentialComplex
	for _, c := range s.data {
		if c.City == city {
			result = append(result, copyComplex(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ComplexID < result[j].ComplexID
	})

	return result, nil
}

func copyComplex(c *domain.ResidentialComplex) *domain.ResidentialComplex {
	complexCopy := *c
	complexCopy.Names = append([]domain.NameVariant(nil), c.Names...)
	if c.StreetID != nil {
		id := *c.StreetID
		complexCopy.StreetID = &id
	}
	return &complexCopy
}

// Verify interface compliance at compile time.
var _ storage.ComplexStore = (*ComplexStore)(nil)

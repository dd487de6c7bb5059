package storage

import (
	"context"
	"time"

	"estate-valuation/internal/domain"
)

// ListingStore provides access to unified_listings storage.
type ListingStore interface {
	// Insert adds a new listing. Returns ErrDuplicateKey if listing_id exists.
	Insert(ctx context.Context, l *domain.UnifiedListing) error

	// GetByID retrieves a listing by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, listingID string) (*domain.UnifiedListing, error)

	// GetBySourceID retrieves a listing by its source-local numeric ID within
	// a source namespace. Returns ErrNotFound if not exists.
	GetBySourceID(ctx context.Context, source domain.SourceType, sourceID int64) (*domain.UnifiedListing, error)

	// GetByExternalURL retrieves a listing by its external URL.
	// Returns ErrNotFound if not exists.
	GetByExternalURL(ctx context.Context, url string) (*domain.UnifiedListing, error)

	// SearchByURLSubstring retrieves listings whose external URL contains
	// the given fragment, case-insensitively.
	SearchByURLSubstring(ctx context.Context, fragment string) ([]*domain.UnifiedListing, error)

	// GetAnalogs retrieves listings comparable to the subject: same city,
	// same deal type, same complex when complexID is set, excluding the
	// subject itself.
	GetAnalogs(ctx context.Context, subject *domain.UnifiedListing) ([]*domain.UnifiedListing, error)

	// GetUnmatchedPage retrieves listings with no complex assigned, ordered
	// by listing_id, for batch matching. Returns up to limit rows starting
	// at offset.
	GetUnmatchedPage(ctx context.Context, offset, limit int) ([]*domain.UnifiedListing, error)

	// UpdateComplexIDs assigns complexes to listings in bulk. Listings
	// absent from the map are untouched.
	UpdateComplexIDs(ctx context.Context, assignments map[string]string) error

	// UpdateStreetIDs assigns streets to listings in bulk. Listings absent
	// from the map are untouched.
	UpdateStreetIDs(ctx context.Context, assignments map[string]string) error
}

// StreetStore provides access to streets storage.
type StreetStore interface {
	// Insert adds a new street. Returns ErrDuplicateKey if street_id exists.
	Insert(ctx context.Context, s *domain.Street) error

	// GetByID retrieves a street by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, streetID string) (*domain.Street, error)

	// GetByCity retrieves all streets in a city.
	GetByCity(ctx context.Context, city string) ([]*domain.Street, error)
}

// ComplexStore provides access to residential_complexes storage.
type ComplexStore interface {
	// Insert adds a new complex. Returns ErrDuplicateKey if complex_id exists.
	Insert(ctx context.Context, c *domain.ResidentialComplex) error

	// GetByID retrieves a complex by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, complexID string) (*domain.ResidentialComplex, error)

	// GetByCity retrieves all complexes in a city.
	GetByCity(ctx context.Context, city string) ([]*domain.ResidentialComplex, error)
}

// ValuationCacheStore provides access to cached valuation reports.
type ValuationCacheStore interface {
	// Get retrieves a cached entry for a listing. Expired entries are
	// treated as absent: the implementation removes them and returns
	// ErrNotFound.
	Get(ctx context.Context, listingID string) (*domain.ValuationCacheEntry, error)

	// Set stores an entry, replacing any previous one for the listing.
	Set(ctx context.Context, e *domain.ValuationCacheEntry) error

	// Invalidate removes the entry for a listing, if present.
	Invalidate(ctx context.Context, listingID string) error

	// CleanupExpired removes all entries past their expiry as of now.
	// Returns the number of entries removed.
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

// PriceObservationStore provides access to the analytical price history.
type PriceObservationStore interface {
	// InsertBulk appends observations. Observations are append-only.
	InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error

	// GetByComplexID retrieves observations for a complex within
	// [start, end] (inclusive), ordered by observed_at ASC.
	GetByComplexID(ctx context.Context, complexID string, start, end time.Time) ([]*domain.PriceObservation, error)
}

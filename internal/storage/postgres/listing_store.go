package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

const listingColumns = `
	listing_id, source_type, source_id, external_url, platform, deal_type,
	city, primary_data, complex_id, street_id, price_usd, area_m2,
	created_at, updated_at
`

// ListingStore implements storage.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *Pool
}

// NewListingStore creates a new ListingStore.
func NewListingStore(pool *Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Insert adds a new listing. Returns ErrDuplicateKey if listing_id or the
// (source_type, source_id) pair exists.
func (s *ListingStore) Insert(ctx context.Context, l *domain.UnifiedListing) error {
	started := time.Now()
	query := `
		INSERT INTO unified_listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	primaryData, err := marshalPrimary(l.Primary)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, query,
		l.ListingID,
		string(l.SourceType),
		l.SourceID,
		l.ExternalURL,
		string(l.Platform),
		string(l.DealType),
		l.City,
		primaryData,
		l.ComplexID,
		l.StreetID,
		l.PriceUSD,
		l.AreaM2,
		l.CreatedAt,
		l.UpdatedAt,
	)
	observe("listing_insert", started, err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID retrieves a listing by its ID. Returns ErrNotFound if not exists.
func (s *ListingStore) GetByID(ctx context.Context, listingID string) (*domain.UnifiedListing, error) {
	started := time.Now()
	query := `SELECT ` + listingColumns + ` FROM unified_listings WHERE listing_id = $1`

	row := s.pool.QueryRow(ctx, query, listingID)
	l, err := scanListing(row)
	observe("listing_get_by_id", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return l, nil
}

// GetBySourceID retrieves a listing by its source-local numeric ID.
func (s *ListingStore) GetBySourceID(ctx context.Context, source domain.SourceType, sourceID int64) (*domain.UnifiedListing, error) {
	started := time.Now()
	query := `SELECT ` + listingColumns + ` FROM unified_listings WHERE source_type = $1 AND source_id = $2`

	row := s.pool.QueryRow(ctx, query, string(source), sourceID)
	l, err := scanListing(row)
	observe("listing_get_by_source_id", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get listing by source id: %w", err)
	}
	return l, nil
}

// GetByExternalURL retrieves a listing by its external URL.
func (s *ListingStore) GetByExternalURL(ctx context.Context, url string) (*domain.UnifiedListing, error) {
	started := time.Now()
	query := `SELECT ` + listingColumns + ` FROM unified_listings WHERE external_url = $1`

	row := s.pool.QueryRow(ctx, query, url)
	l, err := scanListing(row)
	observe("listing_get_by_url", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get listing by url: %w", err)
	}
	return l, nil
}

// SearchByURLSubstring retrieves listings whose URL contains the fragment,
// case-insensitively, ordered by listing_id.
func (s *ListingStore) SearchByURLSubstring(ctx context.Context, fragment string) ([]*domain.UnifiedListing, error) {
	started := time.Now()
	query := `
		SELECT ` + listingColumns + `
		FROM unified_listings
		WHERE external_url ILIKE '%' || $1 || '%'
		ORDER BY listing_id ASC
	`

	rows, err := s.pool.Query(ctx, query, fragment)
	observe("listing_search_by_url", started, err)
	if err != nil {
		return nil, fmt.Errorf("search listings by url: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// GetAnalogs retrieves listings comparable to the subject: same city and
// deal type, same complex when the subject has one, excluding the subject.
func (s *ListingStore) GetAnalogs(ctx context.Context, subject *domain.UnifiedListing) ([]*domain.UnifiedListing, error) {
	if subject == nil {
		return nil, storage.ErrInvalidInput
	}

	started := time.Now()
	query := `
		SELECT ` + listingColumns + `
		FROM unified_listings
		WHERE listing_id <> $1
		  AND city = $2
		  AND deal_type = $3
		  AND ($4::uuid IS NULL OR complex_id = $4)
		ORDER BY listing_id ASC
	`

	rows, err := s.pool.Query(ctx, query, subject.ListingID, subject.City, string(subject.DealType), subject.ComplexID)
	observe("listing_get_analogs", started, err)
	if err != nil {
		return nil, fmt.Errorf("get analogs: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// GetUnmatchedPage retrieves listings with no complex assigned, ordered by
// listing_id for stable pagination.
func (s *ListingStore) GetUnmatchedPage(ctx context.Context, offset, limit int) ([]*domain.UnifiedListing, error) {
	if offset < 0 || limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	started := time.Now()
	query := `
		SELECT ` + listingColumns + `
		FROM unified_listings
		WHERE complex_id IS NULL
		ORDER BY listing_id ASC
		OFFSET $1 LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, offset, limit)
	observe("listing_unmatched_page", started, err)
	if err != nil {
		return nil, fmt.Errorf("get unmatched page: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// UpdateComplexIDs assigns complexes to listings in one statement.
func (s *ListingStore) UpdateComplexIDs(ctx context.Context, assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}

	listingIDs := make([]string, 0, len(assignments))
	complexIDs := make([]string, 0, len(assignments))
	for listingID, complexID := range assignments {
		listingIDs = append(listingIDs, listingID)
		complexIDs = append(complexIDs, complexID)
	}

	started := time.Now()
	query := `
		UPDATE unified_listings AS l
		SET complex_id = a.complex_id::uuid,
		    updated_at = (extract(epoch from now()) * 1000)::bigint
		FROM unnest($1::uuid[], $2::text[]) AS a(listing_id, complex_id)
		WHERE l.listing_id = a.listing_id
	`

	tag, err := s.pool.Exec(ctx, query, listingIDs, complexIDs)
	observe("listing_update_complex_ids", started, err)
	if err != nil {
		return fmt.Errorf("update complex ids: %w", err)
	}
	if tag.RowsAffected() < int64(len(assignments)) {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateStreetIDs assigns streets to listings in one statement.
func (s *ListingStore) UpdateStreetIDs(ctx context.Context, assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}

	listingIDs := make([]string, 0, len(assignments))
	streetIDs := make([]string, 0, len(assignments))
	for listingID, streetID := range assignments {
		listingIDs = append(listingIDs, listingID)
		streetIDs = append(streetIDs, streetID)
	}

	started := time.Now()
	query := `
		UPDATE unified_listings AS l
		SET street_id = a.street_id::uuid,
		    updated_at = (extract(epoch from now()) * 1000)::bigint
		FROM unnest($1::uuid[], $2::text[]) AS a(listing_id, street_id)
		WHERE l.listing_id = a.listing_id
	`

	tag, err := s.pool.Exec(ctx, query, listingIDs, streetIDs)
	observe("listing_update_street_ids", started, err)
	if err != nil {
		return fmt.Errorf("update street ids: %w", err)
	}
	if tag.RowsAffected() < int64(len(assignments)) {
		return storage.ErrNotFound
	}
	return nil
}

// scanListing scans a single row into a UnifiedListing.
func scanListing(row pgx.Row) (*domain.UnifiedListing, error) {
	var l domain.UnifiedListing
	var sourceType, platform, dealType string
	var primaryData []byte

	err := row.Scan(
		&l.ListingID,
		&sourceType,
		&l.SourceID,
		&l.ExternalURL,
		&platform,
		&dealType,
		&l.City,
		&primaryData,
		&l.ComplexID,
		&l.StreetID,
		&l.PriceUSD,
		&l.AreaM2,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.SourceType = domain.SourceType(sourceType)
	l.Platform = domain.Platform(platform)
	l.DealType = domain.DealType(dealType)
	l.Primary, err = unmarshalPrimary(l.Platform, primaryData)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// scanListings scans multiple rows into a slice of UnifiedListing.
func scanListings(rows pgx.Rows) ([]*domain.UnifiedListing, error) {
	var listings []*domain.UnifiedListing

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, nil
}

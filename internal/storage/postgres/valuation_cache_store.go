package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/observability"
	"estate-valuation/internal/storage"
)

// ValuationCacheStore implements storage.ValuationCacheStore using
// PostgreSQL. Report sub-documents are stored as JSONB; expired rows are
// deleted lazily on read and in bulk by CleanupExpired.
type ValuationCacheStore struct {
	pool *Pool
	now  func() time.Time
}

// NewValuationCacheStore creates a new ValuationCacheStore.
func NewValuationCacheStore(pool *Pool) *ValuationCacheStore {
	return &ValuationCacheStore{pool: pool, now: time.Now}
}

// Compile-time interface check.
var _ storage.ValuationCacheStore = (*ValuationCacheStore)(nil)

// Get retrieves a cached entry. An expired entry is deleted and reported
// as ErrNotFound.
func (s *ValuationCacheStore) Get(ctx context.Context, listingID string) (*domain.ValuationCacheEntry, error) {
	started := time.Now()
	query := `
		SELECT listing_id, analogs, fair_price, liquidity, calculated_at, expires_at
		FROM valuation_cache
		WHERE listing_id = $1
	`

	var e domain.ValuationCacheEntry
	var analogs, fairPrice, liquidity []byte

	err := s.pool.QueryRow(ctx, query, listingID).Scan(
		&e.ListingID,
		&analogs,
		&fairPrice,
		&liquidity,
		&e.CalculatedAt,
		&e.ExpiresAt,
	)
	observe("cache_get", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	if e.Expired(s.now()) {
		observability.RecordCacheExpired()
		if err := s.Invalidate(ctx, listingID); err != nil {
			return nil, fmt.Errorf("delete expired cache entry: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	if err := json.Unmarshal(analogs, &e.Analogs); err != nil {
		return nil, fmt.Errorf("unmarshal analogs summary: %w", err)
	}
	if err := json.Unmarshal(fairPrice, &e.FairPrice); err != nil {
		return nil, fmt.Errorf("unmarshal fair price snapshot: %w", err)
	}
	if err := json.Unmarshal(liquidity, &e.Liquidity); err != nil {
		return nil, fmt.Errorf("unmarshal liquidity snapshot: %w", err)
	}
	return &e, nil
}

// Set stores an entry, replacing any previous one for the listing.
func (s *ValuationCacheStore) Set(ctx context.Context, e *domain.ValuationCacheEntry) error {
	if e == nil || e.ListingID == "" {
		return storage.ErrInvalidInput
	}

	analogs, err := json.Marshal(e.Analogs)
	if err != nil {
		return fmt.Errorf("marshal analogs summary: %w", err)
	}
	fairPrice, err := json.Marshal(e.FairPrice)
	if err != nil {
		return fmt.Errorf("marshal fair price snapshot: %w", err)
	}
	liquidity, err := json.Marshal(e.Liquidity)
	if err != nil {
		return fmt.Errorf("marshal liquidity snapshot: %w", err)
	}

	started := time.Now()
	query := `
		INSERT INTO valuation_cache (listing_id, analogs, fair_price, liquidity, calculated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (listing_id) DO UPDATE SET
			analogs = EXCLUDED.analogs,
			fair_price = EXCLUDED.fair_price,
			liquidity = EXCLUDED.liquidity,
			calculated_at = EXCLUDED.calculated_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err = s.pool.Exec(ctx, query, e.ListingID, analogs, fairPrice, liquidity, e.CalculatedAt, e.ExpiresAt)
	observe("cache_set", started, err)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for a listing, if present.
func (s *ValuationCacheStore) Invalidate(ctx context.Context, listingID string) error {
	started := time.Now()
	_, err := s.pool.Exec(ctx, `DELETE FROM valuation_cache WHERE listing_id = $1`, listingID)
	observe("cache_invalidate", started, err)
	if err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	return nil
}

// CleanupExpired removes all entries past their expiry as of now.
func (s *ValuationCacheStore) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	started := time.Now()
	tag, err := s.pool.Exec(ctx, `DELETE FROM valuation_cache WHERE expires_at < $1`, now)
	observe("cache_cleanup_expired", started, err)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

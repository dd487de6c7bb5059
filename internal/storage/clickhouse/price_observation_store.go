package clickhouse

import (
	"context"
	"fmt"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// PriceObservationStore implements storage.PriceObservationStore using
// ClickHouse. Observations are append-only; MergeTree enforces no
// uniqueness and none is needed.
type PriceObservationStore struct {
	conn *Conn
}

// NewPriceObservationStore creates a new PriceObservationStore.
func NewPriceObservationStore(conn *Conn) *PriceObservationStore {
	return &PriceObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// InsertBulk appends observations in one batch.
func (s *PriceObservationStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	for _, o := range obs {
		if o == nil || o.ListingID == "" {
			return storage.ErrInvalidInput
		}
	}

	started := time.Now()
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			listing_id, platform, city, complex_id, price_per_m2, observed_at
		)
	`)
	if err != nil {
		observe("observation_insert_bulk", started, err)
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		err = batch.Append(
			o.ListingID, string(o.Platform), o.City,
			o.ComplexID, o.PricePerM2, o.ObservedAt,
		)
		if err != nil {
			observe("observation_insert_bulk", started, err)
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	err = batch.Send()
	observe("observation_insert_bulk", started, err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByComplexID retrieves observations for a complex within [start, end]
// (inclusive), ordered by observed_at ASC.
func (s *PriceObservationStore) GetByComplexID(ctx context.Context, complexID string, start, end time.Time) ([]*domain.PriceObservation, error) {
	started := time.Now()
	query := `
		SELECT listing_id, platform, city, complex_id, price_per_m2, observed_at
		FROM price_observations
		WHERE complex_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, complexID, start.UnixMilli(), end.UnixMilli())
	observe("observation_get_by_complex", started, err)
	if err != nil {
		return nil, fmt.Errorf("query observations by complex: %w", err)
	}
	defer rows.Close()

	var result []*domain.PriceObservation
	for rows.Next() {
		var o domain.PriceObservation
		var platform string

		if err := rows.Scan(&o.ListingID, &platform, &o.City, &o.ComplexID, &o.PricePerM2, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		o.Platform = domain.Platform(platform)
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}
	return result, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

// StreetStore implements storage.StreetStore using PostgreSQL. Name
// variants live in a JSONB column: they are always read as a whole and
// their order is significant.
type StreetStore struct {
	pool *Pool
}

// NewStreetStore creates a new StreetStore.
func NewStreetStore(pool *Pool) *StreetStore {
	return &StreetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StreetStore = (*StreetStore)(nil)

// Insert adds a new street. Returns ErrDuplicateKey if street_id exists.
func (s *StreetStore) Insert(ctx context.Context, st *domain.Street) error {
	names, err := json.Marshal(st.Names)
	if err != nil {
		return fmt.Errorf("marshal street names: %w", err)
	}

	started := time.Now()
	query := `
		INSERT INTO streets (street_id, city, names, distance_km, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query, st.StreetID, st.City, names, st.DistanceKm, st.CreatedAt)
	observe("street_insert", started, err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert street: %w", err)
	}
	return nil
}

// GetByID retrieves a street by its ID. Returns ErrNotFound if not exists.
func (s *StreetStore) GetByID(ctx context.Context, streetID string) (*domain.Street, error) {
	started := time.Now()
	query := `
		SELECT street_id, city, names, distance_km, created_at
		FROM streets
		WHERE street_id = $1
	`

	row := s.pool.QueryRow(ctx, query, streetID)
	st, err := scanStreet(row)
	observe("street_get_by_id", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get street by id: %w", err)
	}
	return st, nil
}

// GetByCity retrieves all streets in a city, ordered by street_id.
func (s *StreetStore) GetByCity(ctx context.Context, city string) ([]*domain.Street, error) {
	started := time.Now()
	query := `
		SELECT street_id, city, names, distance_km, created_at
		FROM streets
		WHERE city = $1
		ORDER BY street_id ASC
	`

	rows, err := s.pool.Query(ctx, query, city)
	observe("street_get_by_city", started, err)
	if err != nil {
		return nil, fmt.Errorf("get streets by city: %w", err)
	}
	defer rows.Close()

	var streets []*domain.Street
	for rows.Next() {
		st, err := scanStreet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan street row: %w", err)
		}
		streets = append(streets, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate street rows: %w", err)
	}
	return streets, nil
}

func scanStreet(row pgx.Row) (*domain.Street, error) {
	var st domain.Street
	var names []byte

	if err := row.Scan(&st.StreetID, &st.City, &names, &st.DistanceKm, &st.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(names, &st.Names); err != nil {
		return nil, fmt.Errorf("unmarshal street names: %w", err)
	}
	return &st, nil
}

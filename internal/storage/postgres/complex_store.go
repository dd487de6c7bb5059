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

// ComplexStore implements storage.ComplexStore using PostgreSQL.
type ComplexStore struct {
	pool *Pool
}

// NewComplexStore creates a new ComplexStore.
func NewComplexStore(pool *Pool) *ComplexStore {
	return &ComplexStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ComplexStore = (*ComplexStore)(nil)

// Insert adds a new complex. Returns ErrDuplicateKey if complex_id exists.
func (s *ComplexStore) Insert(ctx context.Context, c *domain.ResidentialComplex) error {
	names, err := json.Marshal(c.Names)
	if err != nil {
		return fmt.Errorf("marshal complex names: %w", err)
	}

	started := time.Now()
	query := `
		INSERT INTO residential_complexes (complex_id, city, names, street_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query, c.ComplexID, c.City, names, c.StreetID, c.CreatedAt)
	observe("complex_insert", started, err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert complex: %w", err)
	}
	return nil
}

// GetByID retrieves a complex by its ID. Returns ErrNotFound if not exists.
func (s *ComplexStore) GetByID(ctx context.Context, complexID string) (*domain.ResidentialComplex, error) {
	started := time.Now()
	query := `
		SELECT complex_id, city, names, street_id, created_at
		FROM residential_complexes
		WHERE complex_id = $1
	`

	row := s.pool.QueryRow(ctx, query, complexID)
	c, err := scanComplex(row)
	observe("complex_get_by_id", started, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get complex by id: %w", err)
	}
	return c, nil
}

// GetByCity retrieves all complexes in a city, ordered by complex_id.
func (s *ComplexStore) GetByCity(ctx context.Context, city string) ([]*domain.ResidentialComplex, error) {
	started := time.Now()
	query := `
		SELECT complex_id, city, names, street_id, created_at
		FROM residential_complexes
		WHERE city = $1
		ORDER BY complex_id ASC
	`

	rows, err := s.pool.Query(ctx, query, city)
	observe("complex_get_by_city", started, err)
	if err != nil {
		return nil, fmt.Errorf("get complexes by city: %w", err)
	}
	defer rows.Close()

	var complexes []*domain.ResidentialComplex
	for rows.Next() {
		c, err := scanComplex(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complex row: %w", err)
		}
		complexes = append(complexes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complex rows: %w", err)
	}
	return complexes, nil
}

func scanComplex(row pgx.Row) (*domain.ResidentialComplex, error) {
	var c domain.ResidentialComplex
	var names []byte

	if err := row.Scan(&c.ComplexID, &c.City, &names, &c.StreetID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(names, &c.Names); err != nil {
		return nil, fmt.Errorf("unmarshal complex names: %w", err)
	}
	return &c, nil
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

const (
	streetID1 = "66666666-6666-6666-6666-666666666666"
	streetID2 = "77777777-7777-7777-7777-777777777777"
)

func testStreet(streetID string) *domain.Street {
	return &domain.Street{
		StreetID: streetID,
		City:     "Київ",
		Names: []domain.NameVariant{
			{Name: "вулиця Січових Стрільців", Language: domain.LangUK, IsCurrent: true},
			{Name: "улица Сечевых Стрельцов", Language: domain.LangRU, IsCurrent: true},
			{Name: "вулиця Артема", Language: domain.LangUK, IsCurrent: false},
		},
		DistanceKm: ptr(3.4),
		CreatedAt:  1700000000000,
	}
}

func TestStreetStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStreetStore(pool)
	ctx := context.Background()

	want := testStreet(streetID1)
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.GetByID(ctx, streetID1)
	require.NoError(t, err)
	require.Equal(t, want.StreetID, got.StreetID)
	require.Equal(t, want.City, got.City)
	require.Equal(t, want.Names, got.Names)
	require.Equal(t, want.DistanceKm, got.DistanceKm)
	require.Equal(t, want.CreatedAt, got.CreatedAt)
}

func TestStreetStore_Insert_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStreetStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testStreet(streetID1)))
	require.ErrorIs(t, store.Insert(ctx, testStreet(streetID1)), storage.ErrDuplicateKey)
}

func TestStreetStore_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStreetStore(pool)

	_, err := store.GetByID(context.Background(), streetID1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStreetStore_GetByCity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStreetStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testStreet(streetID1)))

	ungeocoded := testStreet(streetID2)
	ungeocoded.DistanceKm = nil
	require.NoError(t, store.Insert(ctx, ungeocoded))

	lviv := testStreet("88888888-8888-8888-8888-888888888888")
	lviv.City = "Львів"
	require.NoError(t, store.Insert(ctx, lviv))

	got, err := store.GetByCity(ctx, "Київ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, streetID1, got[0].StreetID)
	require.Equal(t, streetID2, got[1].StreetID)
	require.Nil(t, got[1].DistanceKm)

	got, err = store.GetByCity(ctx, "Одеса")
	require.NoError(t, err)
	require.Empty(t, got)
}

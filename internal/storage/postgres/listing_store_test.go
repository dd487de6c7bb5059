package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/storage"
)

const (
	listingID1 = "11111111-1111-1111-1111-111111111111"
	listingID2 = "22222222-2222-2222-2222-222222222222"
	listingID3 = "33333333-3333-3333-3333-333333333333"
	listingID4 = "44444444-4444-4444-4444-444444444444"
	listingID5 = "55555555-5555-5555-5555-555555555555"

	complexID1 = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	complexID2 = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

func testListing(listingID string, sourceID int64) *domain.UnifiedListing {
	return &domain.UnifiedListing{
		ListingID:   listingID,
		SourceType:  domain.SourceVector,
		SourceID:    sourceID,
		ExternalURL: "https://www.olx.ua/d/uk/obyavlenie/kvartira-" + listingID[:8],
		Platform:    domain.PlatformOlx,
		DealType:    domain.DealSale,
		City:        "Київ",
		Primary: domain.OlxPrimary{
			Title:       "Продам 2к квартиру в ЖК Сонячний",
			Description: "Простора квартира з ремонтом",
			Params:      map[string]string{"state": "renovated"},
			PriceUSD:    ptr(95000.0),
			AreaM2:      ptr(62.0),
		},
		PriceUSD:  ptr(95000.0),
		AreaM2:    ptr(62.0),
		CreatedAt: 1700000000000,
		UpdatedAt: 1700000000000,
	}
}

func seedComplex(t *testing.T, store *ComplexStore, complexID string) {
	t.Helper()
	err := store.Insert(context.Background(), &domain.ResidentialComplex{
		ComplexID: complexID,
		City:      "Київ",
		Names: []domain.NameVariant{
			{Name: "ЖК Сонячний", Language: domain.LangUK, IsCurrent: true},
		},
		CreatedAt: 1700000000000,
	})
	require.NoError(t, err)
}

func TestListingStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	want := testListing(listingID1, 812345)
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.GetByID(ctx, listingID1)
	require.NoError(t, err)
	require.Equal(t, want.ListingID, got.ListingID)
	require.Equal(t, want.SourceType, got.SourceType)
	require.Equal(t, want.SourceID, got.SourceID)
	require.Equal(t, want.ExternalURL, got.ExternalURL)
	require.Equal(t, want.Platform, got.Platform)
	require.Equal(t, want.DealType, got.DealType)
	require.Equal(t, want.City, got.City)
	require.Equal(t, want.Primary, got.Primary)
	require.Equal(t, want.PriceUSD, got.PriceUSD)
	require.Equal(t, want.AreaM2, got.AreaM2)
	require.Nil(t, got.ComplexID)
	require.Nil(t, got.StreetID)
}

func TestListingStore_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)

	_, err := store.GetByID(context.Background(), listingID1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListingStore_Insert_Duplicates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testListing(listingID1, 812345)))

	// Same primary key.
	err := store.Insert(ctx, testListing(listingID1, 999999))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same (source_type, source_id) pair under a different key.
	dup := testListing(listingID2, 812345)
	dup.ExternalURL = "https://www.olx.ua/d/uk/obyavlenie/other"
	err = store.Insert(ctx, dup)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestListingStore_GetBySourceID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	vector := testListing(listingID1, 812345)
	require.NoError(t, store.Insert(ctx, vector))

	aggregator := testListing(listingID2, 812345)
	aggregator.SourceType = domain.SourceAggregator
	aggregator.ExternalURL = "https://flatfy.ua/realty/812345"
	require.NoError(t, store.Insert(ctx, aggregator))

	got, err := store.GetBySourceID(ctx, domain.SourceVector, 812345)
	require.NoError(t, err)
	require.Equal(t, listingID1, got.ListingID)

	got, err = store.GetBySourceID(ctx, domain.SourceAggregator, 812345)
	require.NoError(t, err)
	require.Equal(t, listingID2, got.ListingID)

	_, err = store.GetBySourceID(ctx, domain.SourceVectorCRM, 812345)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListingStore_GetByExternalURL(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	l := testListing(listingID1, 812345)
	require.NoError(t, store.Insert(ctx, l))

	got, err := store.GetByExternalURL(ctx, l.ExternalURL)
	require.NoError(t, err)
	require.Equal(t, listingID1, got.ListingID)

	_, err = store.GetByExternalURL(ctx, "https://example.com/nothing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListingStore_SearchByURLSubstring(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	olx := testListing(listingID1, 812345)
	require.NoError(t, store.Insert(ctx, olx))

	rieltor := testListing(listingID2, 812346)
	rieltor.ExternalURL = "https://rieltor.ua/flats-sale/view/812346/"
	require.NoError(t, store.Insert(ctx, rieltor))

	got, err := store.SearchByURLSubstring(ctx, "OLX.UA")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, listingID1, got[0].ListingID)

	got, err = store.SearchByURLSubstring(ctx, "812346")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, listingID2, got[0].ListingID)

	got, err = store.SearchByURLSubstring(ctx, "no-such-fragment")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestListingStore_GetAnalogs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	seedComplex(t, NewComplexStore(pool), complexID1)

	subject := testListing(listingID1, 1)
	require.NoError(t, store.Insert(ctx, subject))

	sameCity := testListing(listingID2, 2)
	require.NoError(t, store.Insert(ctx, sameCity))

	otherCity := testListing(listingID3, 3)
	otherCity.City = "Львів"
	require.NoError(t, store.Insert(ctx, otherCity))

	rent := testListing(listingID4, 4)
	rent.DealType = domain.DealRent
	require.NoError(t, store.Insert(ctx, rent))

	inComplex := testListing(listingID5, 5)
	inComplex.ComplexID = ptr(complexID1)
	require.NoError(t, store.Insert(ctx, inComplex))

	// Without a complex the pool is the whole city and deal type.
	got, err := store.GetAnalogs(ctx, subject)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, listingID2, got[0].ListingID)
	require.Equal(t, listingID5, got[1].ListingID)

	// With a complex only complex members qualify.
	scoped := testListing(listingID1, 1)
	scoped.ComplexID = ptr(complexID1)
	got, err = store.GetAnalogs(ctx, scoped)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, listingID5, got[0].ListingID)

	_, err = store.GetAnalogs(ctx, nil)
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestListingStore_GetUnmatchedPage(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	seedComplex(t, NewComplexStore(pool), complexID1)

	require.NoError(t, store.Insert(ctx, testListing(listingID1, 1)))
	require.NoError(t, store.Insert(ctx, testListing(listingID2, 2)))
	require.NoError(t, store.Insert(ctx, testListing(listingID3, 3)))

	matched := testListing(listingID4, 4)
	matched.ComplexID = ptr(complexID1)
	require.NoError(t, store.Insert(ctx, matched))

	page, err := store.GetUnmatchedPage(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, listingID1, page[0].ListingID)
	require.Equal(t, listingID2, page[1].ListingID)

	page, err = store.GetUnmatchedPage(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, listingID3, page[0].ListingID)

	page, err = store.GetUnmatchedPage(ctx, 10, 2)
	require.NoError(t, err)
	require.Empty(t, page)

	_, err = store.GetUnmatchedPage(ctx, -1, 2)
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetUnmatchedPage(ctx, 0, 0)
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestListingStore_UpdateComplexIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	complexes := NewComplexStore(pool)
	seedComplex(t, complexes, complexID1)
	require.NoError(t, complexes.Insert(ctx, &domain.ResidentialComplex{
		ComplexID: complexID2,
		City:      "Київ",
		Names: []domain.NameVariant{
			{Name: "ЖК Рівер Сайд", Language: domain.LangUK, IsCurrent: true},
		},
	}))

	require.NoError(t, store.Insert(ctx, testListing(listingID1, 1)))
	require.NoError(t, store.Insert(ctx, testListing(listingID2, 2)))

	err := store.UpdateComplexIDs(ctx, map[string]string{
		listingID1: complexID1,
		listingID2: complexID2,
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, listingID1)
	require.NoError(t, err)
	require.NotNil(t, got.ComplexID)
	require.Equal(t, complexID1, *got.ComplexID)

	got, err = store.GetByID(ctx, listingID2)
	require.NoError(t, err)
	require.NotNil(t, got.ComplexID)
	require.Equal(t, complexID2, *got.ComplexID)

	// Linked rows leave the unmatched set.
	page, err := store.GetUnmatchedPage(ctx, 0, 10)
	require.NoError(t, err)
	require.Empty(t, page)

	// A missing listing fails the whole assignment batch.
	err = store.UpdateComplexIDs(ctx, map[string]string{
		listingID3: complexID1,
	})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.UpdateComplexIDs(ctx, nil))
}

func TestListingStore_UpdateStreetIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewListingStore(pool)
	ctx := context.Background()

	streets := NewStreetStore(pool)
	require.NoError(t, streets.Insert(ctx, testStreet(streetID1)))
	require.NoError(t, streets.Insert(ctx, testStreet(streetID2)))

	require.NoError(t, store.Insert(ctx, testListing(listingID1, 1)))
	require.NoError(t, store.Insert(ctx, testListing(listingID2, 2)))

	err := store.UpdateStreetIDs(ctx, map[string]string{
		listingID1: streetID1,
		listingID2: streetID2,
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, listingID1)
	require.NoError(t, err)
	require.NotNil(t, got.StreetID)
	require.Equal(t, streetID1, *got.StreetID)

	got, err = store.GetByID(ctx, listingID2)
	require.NoError(t, err)
	require.NotNil(t, got.StreetID)
	require.Equal(t, streetID2, *got.StreetID)

	// A missing listing fails the whole assignment batch.
	err = store.UpdateStreetIDs(ctx, map[string]string{
		listingID3: streetID1,
	})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.UpdateStreetIDs(ctx, nil))
}

package memory

import (
	"context"
	"testing"
	"time"

	"estate-valuation/internal/domain"
)

func TestPriceObservationStore_InsertAndQuery(t *testing.T) {
	store := NewPriceObservationStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	obs := []*domain.PriceObservation{
		{ListingID: "L3", Platform: domain.PlatformOlx, City: "Київ", ComplexID: "C1", PricePerM2: 1200, ObservedAt: base.Add(2 * time.Hour).UnixMilli()},
		{ListingID: "L1", Platform: domain.PlatformOlx, City: "Київ", ComplexID: "C1", PricePerM2: 1000, ObservedAt: base.UnixMilli()},
		{ListingID: "L2", Platform: domain.PlatformRieltor, City: "Київ", ComplexID: "C2", PricePerM2: 1100, ObservedAt: base.Add(time.Hour).UnixMilli()},
	}
	if err := store.InsertBulk(ctx, obs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByComplexID(ctx, "C1", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetByComplexID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d observations, want 2", len(got))
	}
	// Ordered by observed_at ASC.
	if got[0].ListingID != "L1" || got[1].ListingID != "L3" {
		t.Errorf("unexpected ordering: %s, %s", got[0].ListingID, got[1].ListingID)
	}

	// Range bounds are inclusive.
	exact, err := store.GetByComplexID(ctx, "C1", base, base)
	if err != nil {
		t.Fatalf("GetByComplexID failed: %v", err)
	}
	if len(exact) != 1 || exact[0].ListingID != "L1" {
		t.Errorf("inclusive bound query returned %+v", exact)
	}
}

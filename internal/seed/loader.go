// Package seed loads reference data and listing snapshots from JSON
// dumps into storage. Record ids are derived deterministically, so a
// rerun of the same dump inserts nothing new.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/idhash"
	"estate-valuation/internal/storage"
)

// ErrInvalidRecord marks a record that cannot be loaded as written.
var ErrInvalidRecord = errors.New("seed: invalid record")

// Entity kinds fed into id derivation.
const (
	KindStreet  = "street"
	KindComplex = "complex"
)

// StreetRecord is one street row of a reference dump.
type StreetRecord struct {
	City       string               `json:"city"`
	Names      []domain.NameVariant `json:"names"`
	DistanceKm *float64             `json:"distance_km,omitempty"`
}

// ComplexRecord is one residential complex row of a reference dump.
// Street, when set, is the current street name the complex sits on and
// must resolve against an already loaded street in the same city.
type ComplexRecord struct {
	City   string               `json:"city"`
	Names  []domain.NameVariant `json:"names"`
	Street string               `json:"street,omitempty"`
}

// ListingRecord is one listing row of a snapshot dump. The payload is
// flattened; the loader rebuilds the platform-specific shape from it.
type ListingRecord struct {
	SourceType  domain.SourceType `json:"source_type"`
	SourceID    int64             `json:"source_id"`
	ExternalURL string            `json:"external_url"`
	Platform    domain.Platform   `json:"platform"`
	DealType    domain.DealType   `json:"deal_type"`
	City        string            `json:"city"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PriceUSD    *float64          `json:"price_usd,omitempty"`
	AreaM2      *float64          `json:"area_m2,omitempty"`
	Condition   *string           `json:"condition,omitempty"`
}

// Loader writes dump records into the stores.
type Loader struct {
	streets   storage.StreetStore
	complexes storage.ComplexStore
	listings  storage.ListingStore
	now       func() time.Time
	logger    *log.Logger
}

// Report counts the outcome of one load run. Skipped rows already
// existed under the same derived id.
type Report struct {
	Streets   int
	Complexes int
	Listings  int
	Skipped   int
}

func NewLoader(streets storage.StreetStore, complexes storage.ComplexStore, listings storage.ListingStore, now func() time.Time, logger *log.Logger) *Loader {
	if now == nil {
		now = time.Now
	}
	return &Loader{
		streets:   streets,
		complexes: complexes,
		listings:  listings,
		now:       now,
		logger:    logger,
	}
}

// LoadStreets inserts street records, skipping ones already present.
func (l *Loader) LoadStreets(ctx context.Context, records []StreetRecord) (loaded, skipped int, err error) {
	for i, rec := range records {
		canonical := currentName(rec.Names)
		if rec.City == "" || canonical == "" {
			return loaded, skipped, fmt.Errorf("street %d: %w: city and a current name are required", i, ErrInvalidRecord)
		}
		street := &domain.Street{
			StreetID:   idhash.ComputeEntityID(KindStreet, rec.City, canonical),
			City:       rec.City,
			Names:      rec.Names,
			DistanceKm: rec.DistanceKm,
			CreatedAt:  l.now().UnixMilli(),
		}
		switch insertErr := l.streets.Insert(ctx, street); {
		case insertErr == nil:
			loaded++
		case errors.Is(insertErr, storage.ErrDuplicateKey):
			skipped++
		default:
			return loaded, skipped, fmt.Errorf("street %d (%s): %w", i, canonical, insertErr)
		}
	}
	return loaded, skipped, nil
}

// LoadComplexes inserts complex records. A record naming a street that
// is not loaded yet is inserted without the link.
func (l *Loader) LoadComplexes(ctx context.Context, records []ComplexRecord) (loaded, skipped int, err error) {
	for i, rec := range records {
		canonical := currentName(rec.Names)
		if rec.City == "" || canonical == "" {
			return loaded, skipped, fmt.Errorf("complex %d: %w: city and a current name are required", i, ErrInvalidRecord)
		}
		rc := &domain.ResidentialComplex{
			ComplexID: idhash.ComputeEntityID(KindComplex, rec.City, canonical),
			City:      rec.City,
			Names:     rec.Names,
			CreatedAt: l.now().UnixMilli(),
		}
		if rec.Street != "" {
			streetID := idhash.ComputeEntityID(KindStreet, rec.City, rec.Street)
			switch _, lookupErr := l.streets.GetByID(ctx, streetID); {
			case lookupErr == nil:
				rc.StreetID = &streetID
			case errors.Is(lookupErr, storage.ErrNotFound):
				l.logger.Printf("complex %q: street %q not loaded, leaving unlinked", canonical, rec.Street)
			default:
				return loaded, skipped, fmt.Errorf("complex %d (%s): %w", i, canonical, lookupErr)
			}
		}
		switch insertErr := l.complexes.Insert(ctx, rc); {
		case insertErr == nil:
			loaded++
		case errors.Is(insertErr, storage.ErrDuplicateKey):
			skipped++
		default:
			return loaded, skipped, fmt.Errorf("complex %d (%s): %w", i, canonical, insertErr)
		}
	}
	return loaded, skipped, nil
}

// LoadListings inserts listing records, skipping ones already present.
func (l *Loader) LoadListings(ctx context.Context, records []ListingRecord) (loaded, skipped int, err error) {
	for i, rec := range records {
		listing, buildErr := l.buildListing(rec)
		if buildErr != nil {
			return loaded, skipped, fmt.Errorf("listing %d: %w", i, buildErr)
		}
		switch insertErr := l.listings.Insert(ctx, listing); {
		case insertErr == nil:
			loaded++
		case errors.Is(insertErr, storage.ErrDuplicateKey):
			skipped++
		default:
			return loaded, skipped, fmt.Errorf("listing %d (%s %d): %w", i, rec.SourceType, rec.SourceID, insertErr)
		}
	}
	return loaded, skipped, nil
}

func (l *Loader) buildListing(rec ListingRecord) (*domain.UnifiedListing, error) {
	if !rec.SourceType.Valid() || rec.SourceID <= 0 {
		return nil, fmt.Errorf("%w: bad source %q/%d", ErrInvalidRecord, rec.SourceType, rec.SourceID)
	}
	if rec.City == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidRecord)
	}
	if rec.DealType != domain.DealSale && rec.DealType != domain.DealRent {
		return nil, fmt.Errorf("%w: bad deal type %q", ErrInvalidRecord, rec.DealType)
	}
	primary, err := primaryFor(rec)
	if err != nil {
		return nil, err
	}
	ts := l.now().UnixMilli()
	return &domain.UnifiedListing{
		ListingID:   idhash.ComputeListingID(rec.SourceType, rec.SourceID),
		SourceType:  rec.SourceType,
		SourceID:    rec.SourceID,
		ExternalURL: rec.ExternalURL,
		Platform:    rec.Platform,
		DealType:    rec.DealType,
		City:        rec.City,
		Primary:     primary,
		PriceUSD:    rec.PriceUSD,
		AreaM2:      rec.AreaM2,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// primaryFor rebuilds the platform payload from the flattened record.
// Dump descriptions are single-language, so bilingual platforms get the
// text in their uk slot.
func primaryFor(rec ListingRecord) (domain.PrimaryData, error) {
	switch rec.Platform {
	case domain.PlatformOlx:
		params := map[string]string{}
		if rec.Condition != nil {
			params["state"] = *rec.Condition
		}
		return domain.OlxPrimary{
			Title:       rec.Title,
			Description: rec.Description,
			Params:      params,
			PriceUSD:    rec.PriceUSD,
			AreaM2:      rec.AreaM2,
		}, nil
	case domain.PlatformRieltor:
		return domain.RieltorPrimary{
			Headline:      rec.Title,
			DescriptionUK: rec.Description,
			PriceUSD:      rec.PriceUSD,
			AreaTotal:     rec.AreaM2,
			Condition:     rec.Condition,
		}, nil
	case domain.PlatformDomRia:
		return domain.DomRiaPrimary{
			TitleUK:       rec.Title,
			DescriptionUK: rec.Description,
			PriceUSD:      rec.PriceUSD,
			TotalAreaM2:   rec.AreaM2,
			RepairState:   rec.Condition,
		}, nil
	case domain.PlatformFlatfy:
		return domain.FlatfyPrimary{
			Title:    rec.Title,
			Text:     rec.Description,
			PriceUSD: rec.PriceUSD,
			AreaM2:   rec.AreaM2,
		}, nil
	case domain.PlatformRealtUA:
		return domain.RealtUAPrimary{
			Title:         rec.Title,
			DescriptionRU: rec.Description,
			PriceUSD:      rec.PriceUSD,
			AreaM2:        rec.AreaM2,
			Condition:     rec.Condition,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidRecord, rec.Platform)
}

func currentName(names []domain.NameVariant) string {
	for _, v := range names {
		if v.IsCurrent {
			return v.Name
		}
	}
	return ""
}

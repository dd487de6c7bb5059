package domain

// UnifiedListing is a listing aggregated from one of the source platforms.
// Corresponds to the unified_listings table in PostgreSQL. ComplexID is nil
// until the batch matcher (or a sync collaborator) links the listing to a
// canonical complex.
type UnifiedListing struct {
	ListingID   string // UUID, primary key
	SourceType  SourceType
	SourceID    int64 // platform-specific numeric ad id
	ExternalURL string
	Platform    Platform
	DealType    DealType
	City        string
	Primary     PrimaryData // platform-specific semi-structured attributes
	ComplexID   *string
	StreetID    *string
	PriceUSD    *float64
	AreaM2      *float64
	CreatedAt   int64 // record creation timestamp (ms)
	UpdatedAt   int64
}

// PricePerMeter returns the per-meter price, false when price or area is
// missing or the area is zero.
func (l *UnifiedListing) PricePerMeter() (float64, bool) {
	if l.PriceUSD == nil || l.AreaM2 == nil || *l.AreaM2 <= 0 {
		return 0, false
	}
	return *l.PriceUSD / *l.AreaM2, true
}

package domain

// SourceType identifies the namespace a numeric source-specific id lives in.
type SourceType string

const (
	SourceVector     SourceType = "vector"
	SourceAggregator SourceType = "aggregator"
	SourceVectorCRM  SourceType = "vector_crm"
)

// Valid reports whether the source type is one of the known namespaces.
func (s SourceType) Valid() bool {
	switch s {
	case SourceVector, SourceAggregator, SourceVectorCRM:
		return true
	}
	return false
}

// Platform identifies the listing platform a record was aggregated from.
type Platform string

const (
	PlatformOlx      Platform = "olx"
	PlatformRieltor  Platform = "rieltor"
	PlatformDomRia   Platform = "dom_ria"
	PlatformFlatfy   Platform = "flatfy"
	PlatformRealtUA  Platform = "realt_ua"
)

// DealType identifies sale vs. rent listings.
type DealType string

const (
	DealSale DealType = "sale"
	DealRent DealType = "rent"
)

// Language tags a street or complex name variant.
type Language string

const (
	LangUK Language = "uk"
	LangRU Language = "ru"
)

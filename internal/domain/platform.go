package domain

// ListingFields is the common field set every platform adapter normalizes
// into before matching or statistics run. Pointer fields are nil when the
// platform did not supply the attribute.
type ListingFields struct {
	Title         string
	DescriptionUK string
	DescriptionRU string
	PriceUSD      *float64
	AreaM2        *float64
	ConditionCode *string
}

// PrimaryData is the platform-specific semi-structured payload of a listing.
// Each platform implements its own adapter; the rest of the system only ever
// sees ListingFields.
type PrimaryData interface {
	Platform() Platform
	Fields() ListingFields
}

// OlxPrimary is the raw attribute set an OLX ad carries.
type OlxPrimary struct {
	Title       string
	Description string // OLX descriptions are single-language, usually uk
	Params      map[string]string
	PriceUSD    *float64
	AreaM2      *float64
}

func (p OlxPrimary) Platform() Platform { return PlatformOlx }

func (p OlxPrimary) Fields() ListingFields {
	f := ListingFields{
		Title:         p.Title,
		DescriptionUK: p.Description,
		PriceUSD:      p.PriceUSD,
		AreaM2:        p.AreaM2,
	}
	if c, ok := p.Params["state"]; ok {
		f.ConditionCode = &c
	}
	return f
}

// RieltorPrimary is the raw attribute set a rieltor.ua ad carries.
type RieltorPrimary struct {
	Headline      string
	DescriptionUK string
	DescriptionRU string
	PriceUSD      *float64
	AreaTotal     *float64
	Condition     *string
}

func (p RieltorPrimary) Platform() Platform { return PlatformRieltor }

func (p RieltorPrimary) Fields() ListingFields {
	return ListingFields{
		Title:         p.Headline,
		DescriptionUK: p.DescriptionUK,
		DescriptionRU: p.DescriptionRU,
		PriceUSD:      p.PriceUSD,
		AreaM2:        p.AreaTotal,
		ConditionCode: p.Condition,
	}
}

// DomRiaPrimary is the raw attribute set a dom.ria ad carries.
type DomRiaPrimary struct {
	TitleUK       string
	TitleRU       string
	DescriptionUK string
	DescriptionRU string
	PriceUSD      *float64
	TotalAreaM2   *float64
	RepairState   *string
}

func (p DomRiaPrimary) Platform() Platform { return PlatformDomRia }

func (p DomRiaPrimary) Fields() ListingFields {
	title := p.TitleUK
	if title == "" {
		title = p.TitleRU
	}
	return ListingFields{
		Title:         title,
		DescriptionUK: p.DescriptionUK,
		DescriptionRU: p.DescriptionRU,
		PriceUSD:      p.PriceUSD,
		AreaM2:        p.TotalAreaM2,
		ConditionCode: p.RepairState,
	}
}

// FlatfyPrimary is the raw attribute set a flatfy ad carries.
type FlatfyPrimary struct {
	Title    string
	Text     string
	PriceUSD *float64
	AreaM2   *float64
}

func (p FlatfyPrimary) Platform() Platform { return PlatformFlatfy }

func (p FlatfyPrimary) Fields() ListingFields {
	return ListingFields{
		Title:         p.Title,
		DescriptionUK: p.Text,
		PriceUSD:      p.PriceUSD,
		AreaM2:        p.AreaM2,
	}
}

// RealtUAPrimary is the raw attribute set a realt.ua ad carries.
type RealtUAPrimary struct {
	Title         string
	DescriptionRU string
	PriceUSD      *float64
	AreaM2        *float64
	Condition     *string
}

func (p RealtUAPrimary) Platform() Platform { return PlatformRealtUA }

func (p RealtUAPrimary) Fields() ListingFields {
	return ListingFields{
		Title:         p.Title,
		DescriptionRU: p.DescriptionRU,
		PriceUSD:      p.PriceUSD,
		AreaM2:        p.AreaM2,
		ConditionCode: p.Condition,
	}
}

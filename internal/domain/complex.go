package domain

// ResidentialComplex is a canonical apartment complex listings are linked to.
// Corresponds to the residential_complexes table in PostgreSQL.
type ResidentialComplex struct {
	ComplexID string // UUID
	City      string
	Names     []NameVariant // current and historical marketing names per language
	StreetID  *string       // optional link to the canonical street
	CreatedAt int64         // record creation timestamp (ms)
}

package domain

// NameVariant is one historical or current name of a street in one language.
// Renamed streets keep their old names as non-current variants so that
// listings mentioning the old name still resolve.
type NameVariant struct {
	Name      string   `json:"name"`
	Language  Language `json:"language"`
	IsCurrent bool     `json:"is_current"`
}

// Street is immutable geo-reference data owned by the geo-reference
// collaborator. Corresponds to the streets table in PostgreSQL.
type Street struct {
	StreetID   string // UUID
	City       string
	Names      []NameVariant
	DistanceKm *float64 // distance to the subject point, nil when not geocoded
	CreatedAt  int64    // record creation timestamp (ms)
}

// CurrentName returns the current name in the given language, or the first
// current variant in any language when none matches.
func (s *Street) CurrentName(lang Language) string {
	var fallback string
	for _, v := range s.Names {
		if !v.IsCurrent {
			continue
		}
		if v.Language == lang {
			return v.Name
		}
		if fallback == "" {
			fallback = v.Name
		}
	}
	return fallback
}

// Package matching resolves free-text street and complex mentions against
// canonical geo-reference records using staged exact/fuzzy/substring
// matching. All functions are pure and hold no shared state.
package matching

import (
	"estate-valuation/internal/domain"
	"estate-valuation/internal/textnorm"
)

// MatchType names the stage that produced a match.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchFuzzy     MatchType = "fuzzy"
	MatchSubstring MatchType = "substring"
)

// streetCandidate is one name variant of one nearby street, prepared for
// comparison. Built fresh per match call, never persisted.
type streetCandidate struct {
	street     *domain.Street
	normalized string
	original   string
	isOldName  bool
	language   domain.Language
}

// StreetMatch is the result of resolving a street mention.
type StreetMatch struct {
	Street      *domain.Street
	Type        MatchType
	MatchedName string
	IsOldName   bool
	Similarity  float64
	DistanceKm  float64 // zero when the street has no geocoded distance
}

// ComplexMatch is the result of resolving a complex mention in listing text.
type ComplexMatch struct {
	Complex     *domain.ResidentialComplex
	Type        MatchType
	MatchedName string
	Similarity  float64
}

// buildStreetCandidates expands every usable language/variant of every
// nearby street, preserving encounter order. A variant tagged not-current is
// a historical name.
func buildStreetCandidates(streets []*domain.Street) []streetCandidate {
	var pool []streetCandidate
	for _, s := range streets {
		for _, v := range s.Names {
			normalized := textnorm.Normalize(v.Name)
			if !textnorm.Usable(normalized) {
				continue
			}
			pool = append(pool, streetCandidate{
				street:     s,
				normalized: normalized,
				original:   v.Name,
				isOldName:  !v.IsCurrent,
				language:   v.Language,
			})
		}
	}
	return pool
}

package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/textnorm"
)

const (
	// maxFuzzyLenDiff is the largest normalized-length difference still
	// worth computing an edit distance for.
	maxFuzzyLenDiff = 3

	// maxFuzzyDistance is the largest acceptable edit distance.
	maxFuzzyDistance = 2

	// minSubstringLen is the shortest candidate considered for containment.
	minSubstringLen = 4

	// substringSimilarity is the fixed confidence of a containment match.
	substringSimilarity = 0.7
)

// MatchStreet resolves an extracted street-name string against nearby
// streets. Stages run in order and the first successful stage wins; results
// are never combined across stages. Returns nil when nothing matches.
func MatchStreet(input string, nearby []*domain.Street) *StreetMatch {
	normalized := textnorm.Normalize(input)
	if !textnorm.Usable(normalized) {
		return nil
	}

	pool := buildStreetCandidates(nearby)
	if len(pool) == 0 {
		return nil
	}

	if m := exactStage(normalized, pool); m != nil {
		return m
	}
	if m := fuzzyStage(normalized, pool); m != nil {
		return m
	}
	return substringStage(normalized, pool)
}

// exactStage returns the first candidate equal to the input.
func exactStage(input string, pool []streetCandidate) *StreetMatch {
	for i := range pool {
		if pool[i].normalized == input {
			return result(&pool[i], MatchExact, 1.0)
		}
	}
	return nil
}

// fuzzyStage keeps the candidate with the strictly smallest edit distance
// not exceeding maxFuzzyDistance. Ties break by encounter order: the first
// candidate seen at a given distance wins.
func fuzzyStage(input string, pool []streetCandidate) *StreetMatch {
	inputLen := textnorm.RuneLen(input)

	var best *streetCandidate
	bestDistance := maxFuzzyDistance + 1

	for i := range pool {
		c := &pool[i]
		candLen := textnorm.RuneLen(c.normalized)
		if diff := candLen - inputLen; diff > maxFuzzyLenDiff || diff < -maxFuzzyLenDiff {
			continue
		}
		d := levenshtein.ComputeDistance(input, c.normalized)
		if d < bestDistance {
			bestDistance = d
			best = c
		}
	}

	if best == nil {
		return nil
	}

	maxLen := textnorm.RuneLen(best.normalized)
	if l := textnorm.RuneLen(input); l > maxLen {
		maxLen = l
	}
	similarity := 1.0 - float64(bestDistance)/float64(maxLen)
	return result(best, MatchFuzzy, similarity)
}

// substringStage returns the first candidate of sufficient length where
// either string contains the other.
func substringStage(input string, pool []streetCandidate) *StreetMatch {
	for i := range pool {
		c := &pool[i]
		if textnorm.RuneLen(c.normalized) < minSubstringLen {
			continue
		}
		if strings.Contains(input, c.normalized) || strings.Contains(c.normalized, input) {
			return result(c, MatchSubstring, substringSimilarity)
		}
	}
	return nil
}

func result(c *streetCandidate, t MatchType, similarity float64) *StreetMatch {
	m := &StreetMatch{
		Street:      c.street,
		Type:        t,
		MatchedName: c.original,
		IsOldName:   c.isOldName,
		Similarity:  similarity,
	}
	if c.street.DistanceKm != nil {
		m.DistanceKm = *c.street.DistanceKm
	}
	return m
}

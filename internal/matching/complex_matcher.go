package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"estate-valuation/internal/domain"
	"estate-valuation/internal/textnorm"
)

// DefaultMinComplexConfidence is the lowest similarity at which a complex
// link is persisted by the batch matcher.
const DefaultMinComplexConfidence = 0.5

// complexCandidate is one usable name variant of one known complex.
type complexCandidate struct {
	complex    *domain.ResidentialComplex
	normalized string
	original   string
}

// MatchComplex resolves a listing's assembled search text (title plus
// descriptions) against the known complex set, using the same staged
// philosophy as street matching. Matches below minConfidence are discarded.
// Returns nil when nothing clears the bar.
func MatchComplex(searchText string, known []*domain.ResidentialComplex, minConfidence float64) *ComplexMatch {
	normalized := textnorm.Normalize(searchText)
	if !textnorm.Usable(normalized) {
		return nil
	}

	var pool []complexCandidate
	for _, c := range known {
		for _, v := range c.Names {
			n := textnorm.Normalize(v.Name)
			if !textnorm.Usable(n) {
				continue
			}
			pool = append(pool, complexCandidate{complex: c, normalized: n, original: v.Name})
		}
	}
	if len(pool) == 0 {
		return nil
	}

	m := matchComplexStaged(normalized, pool)
	if m == nil || m.Similarity < minConfidence {
		return nil
	}
	return m
}

func matchComplexStaged(input string, pool []complexCandidate) *ComplexMatch {
	// Exact: the whole text is the complex name. Happens for bare titles.
	for i := range pool {
		if pool[i].normalized == input {
			return complexResult(&pool[i], MatchExact, 1.0)
		}
	}

	// Fuzzy: near-equal short texts, same bounds as street matching.
	inputLen := textnorm.RuneLen(input)
	var best *complexCandidate
	bestDistance := maxFuzzyDistance + 1
	for i := range pool {
		c := &pool[i]
		candLen := textnorm.RuneLen(c.normalized)
		if diff := candLen - inputLen; diff > maxFuzzyLenDiff || diff < -maxFuzzyLenDiff {
			continue
		}
		if d := levenshtein.ComputeDistance(input, c.normalized); d < bestDistance {
			bestDistance = d
			best = c
		}
	}
	if best != nil {
		maxLen := textnorm.RuneLen(best.normalized)
		if inputLen > maxLen {
			maxLen = inputLen
		}
		return complexResult(best, MatchFuzzy, 1.0-float64(bestDistance)/float64(maxLen))
	}

	// Substring: the usual case for long descriptions mentioning a complex.
	for i := range pool {
		c := &pool[i]
		if textnorm.RuneLen(c.normalized) < minSubstringLen {
			continue
		}
		if strings.Contains(input, c.normalized) || strings.Contains(c.normalized, input) {
			return complexResult(c, MatchSubstring, substringSimilarity)
		}
	}
	return nil
}

func complexResult(c *complexCandidate, t MatchType, similarity float64) *ComplexMatch {
	return &ComplexMatch{
		Complex:     c.complex,
		Type:        t,
		MatchedName: c.original,
		Similarity:  similarity,
	}
}

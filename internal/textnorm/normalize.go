// Package textnorm canonicalizes street and complex name strings so that
// matching is script-, case- and punctuation-insensitive.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLen is the shortest normalized string still usable for matching.
// Shorter candidates are too ambiguous and are excluded from pools.
const MinTokenLen = 3

// stripMarks decomposes to NFD, drops combining marks and recomposes.
// Cyrillic and Latin base letters survive; accents do not.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases the input, strips diacritics and punctuation and
// collapses runs of whitespace to single spaces. Pure function.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Malformed input degrades to the raw text rather than failing.
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			// Punctuation and whitespace both act as separators.
			space = true
		}
	}
	return b.String()
}

// Usable reports whether a normalized string is long enough to match
// against. Length is counted in runes, not bytes.
func Usable(normalized string) bool {
	return RuneLen(normalized) >= MinTokenLen
}

// RuneLen counts runes in s.
func RuneLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

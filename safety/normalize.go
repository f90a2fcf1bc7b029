package safety

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "Warfarína" and "warfarina"
// compare equal. Drug names arrive from free-text UI fields and accents are
// typed inconsistently.
func Fold(s string) string {
	// Transformers carry internal buffers, so build the chain per call
	// rather than sharing one across goroutines.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// nameMatches reports whether two free-text drug names refer to each other
// using case-insensitive substring containment in both directions. This is
// deliberately permissive and can over-match on partial name collisions;
// callers rely on it for parity with the reference tables, not precision.
func nameMatches(a, b string) bool {
	fa := strings.TrimSpace(Fold(a))
	fb := strings.TrimSpace(Fold(b))
	if fa == "" || fb == "" {
		return false
	}
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}

// Package slug turns free text into URL path segments.
package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make lower-cases s, strips diacritics and joins the remaining ASCII
// letters and digits with single dashes: "Brasília 2024!" -> "brasilia-2024".
func Make(s string) string {
	// A transform chain keeps state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// MakeOr returns Make(s), or fallback when nothing survives normalization.
func MakeOr(s, fallback string) string {
	if out := Make(s); out != "" {
		return out
	}
	return fallback
}

// Package nlp holds the small pure-text helpers the dialogue pipeline is built
// on: canonical normalization, date extraction and category extraction.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases text and folds Turkish diacritics to their base Latin
// letters, so "Çeşme" and "cesme" compare equal. It is pure and idempotent;
// every substring containment test in the resolver goes through it.
func Normalize(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	// Dotless ı has no decomposition, so the mark stripper leaves it alone.
	folded = strings.ReplaceAll(folded, "ı", "i")
	folded = strings.ReplaceAll(folded, "I", "i")
	return strings.ToLower(folded)
}

package nlp

import (
	"fmt"
	"regexp"
	"strings"
)

// TravelYear is the fixed year appended to extracted dates. The dialogue never
// derives a year from the prompt.
const TravelYear = 2025

var dateRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(January|February|March|April|May|June|July|August|September|October|November|December)`)

// ExtractDate finds a one- or two-digit day followed by a full month name and
// returns the canonical "<day> <Month> <year>" form. The second return value
// is false when no date is present; callers must re-prompt rather than default
// to today.
func ExtractDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
	return fmt.Sprintf("%s %s %d", m[1], month, TravelYear), true
}

var categorySplitRe = regexp.MustCompile(`,| and `)

// ExtractCategories splits text on commas and the conjunction "and", trims and
// lower-cases each piece, and keeps only tokens that are members of vocabulary
// (lower-cased category labels). The result preserves first-seen order; the
// caller sorts and deduplicates before storing.
func ExtractCategories(text string, vocabulary map[string]struct{}) []string {
	var out []string
	for _, raw := range categorySplitRe.Split(text, -1) {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if _, ok := vocabulary[token]; ok {
			out = append(out, token)
		}
	}
	return out
}

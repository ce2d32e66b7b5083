package reconcile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// featClause matches a trailing "featuring X" / "feat. X" / "ft. X" clause.
	featClause   = regexp.MustCompile(`\s*\b(?:featuring|feat\.?|ft\.?)\s+.*$`)
	parenGroup   = regexp.MustCompile(`\s*\([^)]*\)`)
	bracketGroup = regexp.MustCompile(`\s*\[[^\]]*\]`)
	parenInner   = regexp.MustCompile(`\(([^)]*)\)`)
)

// apostrophes deletes straight, curly, and modifier-letter apostrophes.
var apostrophes = strings.NewReplacer("'", "", "‘", "", "’", "", "ʼ", "")

var stopWords = map[string]struct{}{
	"the":       {},
	"a":         {},
	"an":        {},
	"and":       {},
	"or":        {},
	"but":       {},
	"feat":      {},
	"featuring": {},
}

// Normalize reduces a title to its comparison key: lowercase, no featured
// artist clause, no parenthesized or bracketed groups, no apostrophes or other
// punctuation, no stop words, single spaces.
//
// Normalize is idempotent. Removing a group can expose a feature clause that
// was not trailing before ("ft(x) y"), so passes repeat until the value is
// stable.
func Normalize(title string) string {
	out := normalizePass(title)
	for limit := utf8.RuneCountInString(out); limit > 0; limit-- {
		next := normalizePass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func normalizePass(title string) string {
	s := strings.ToLower(norm.NFC.String(title))
	s = featClause.ReplaceAllString(s, "")
	s = parenGroup.ReplaceAllString(s, "")
	s = bracketGroup.ReplaceAllString(s, "")
	s = apostrophes.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

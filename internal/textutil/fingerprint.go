package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// sectionTag matches bracketed annotations such as "[Chorus]" or LRC time tags.
var sectionTag = regexp.MustCompile(`\[[^\]]*\]`)

// Fingerprint is a term-frequency vector over a lyrics text.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint builds a fingerprint from text.
// Returns nil if the text produces no tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// Tokenize lowercases text, drops section tags and apostrophes, and splits on
// anything that is not a letter or digit. Single-character tokens are
// dropped.
func Tokenize(text string) []string {
	text = sectionTag.ReplaceAllString(strings.ToLower(text), " ")
	text = strings.NewReplacer("'", "", "’", "").Replace(text)
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len([]rune(token)) < 2 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of distinct tokens.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

package textutil

import (
	"strings"

	"github.com/dougty/levdist"
)

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// TextSimilarity fingerprints both texts and compares them.
func TextSimilarity(a, b string) float64 {
	return CosineSimilarity(NewFingerprint(a), NewFingerprint(b))
}

// Closest returns the index of the candidate with the smallest edit distance
// to target, and that distance. Ties keep the earliest candidate. Returns -1
// when there are no candidates.
func Closest(target string, candidates []string) (int, int) {
	best, bestDistance := -1, 0
	for i, candidate := range candidates {
		distance := levdist.Measure(target, candidate)
		if best < 0 || distance < bestDistance {
			best, bestDistance = i, distance
		}
	}
	return best, bestDistance
}

// EditSimilarity scores two lyrics texts between 0 and 1 as one minus their
// edit distance over the longer length, after reducing both to their
// Tokenize form. Empty input scores 0.
func EditSimilarity(a, b string) float64 {
	left := strings.Join(Tokenize(a), " ")
	right := strings.Join(Tokenize(b), " ")
	if left == "" || right == "" {
		return 0
	}
	longest := max(len(left), len(right))
	score := 1 - float64(levdist.Measure(left, right))/float64(longest)
	return max(score, 0)
}

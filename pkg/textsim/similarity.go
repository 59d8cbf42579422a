// Package textsim provides the sequence-similarity ratio used by the
// Matter Matcher (title similarity, §4.9) and person-name dedup (§4.10).
// The spec calls for a Ratcliff/Obershelp-equivalent; agext/levenshtein's
// Match gives an edit-distance-based ratio in [0,1] with the same
// "how similar are these two strings" semantics and is already present in
// the dependency closure.
package textsim

import (
	"strings"

	"github.com/agext/levenshtein"
)

var params = levenshtein.NewParams()

// Ratio returns a similarity score in [0,1] between two strings, 1 being
// identical. Comparison is case-insensitive.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	return levenshtein.Match(strings.ToLower(a), strings.ToLower(b), params)
}

// BestMatch returns the index of the candidate with the highest Ratio
// against target, and that ratio. Returns (-1, 0) for an empty candidates
// slice.
func BestMatch(target string, candidates []string) (int, float64) {
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := Ratio(target, c)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best, bestScore
}

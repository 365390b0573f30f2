package search

import (
	"strings"
	"unicode/utf8"
)

// FuzzyThreshold is the score a fuzzy comparison must exceed to count as a match
const FuzzyThreshold = 0.7

// LevenshteinDistance returns the edit distance between a and b with unit
// insertion, deletion and substitution costs. It compares runes.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// FuzzyScore returns 1 - distance/maxLen clamped to [0,1]. Both sides are
// lower-cased before comparison. An empty query scores 1, an empty candidate 0.
func FuzzyScore(query, candidate string) float64 {
	if query == "" {
		return 1
	}
	if candidate == "" {
		return 0
	}

	distance := LevenshteinDistance(strings.ToLower(query), strings.ToLower(candidate))
	maxLen := max(utf8.RuneCountInString(query), utf8.RuneCountInString(candidate))

	return max(0, 1-float64(distance)/float64(maxLen))
}

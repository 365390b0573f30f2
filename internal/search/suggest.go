package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// MaxSuggestions caps the number of suggestions returned
const MaxSuggestions = 10

// PatternValidation is the outcome of compiling a user-supplied pattern
type PatternValidation struct {
	Valid   bool
	Message string
}

// ValidatePattern compiles pattern and reports whether it is usable in regex
// mode. It never panics.
func ValidatePattern(pattern string) PatternValidation {
	if _, err := regexp.Compile(pattern); err != nil {
		return PatternValidation{Valid: false, Message: err.Error()}
	}
	return PatternValidation{Valid: true}
}

// Suggest returns up to MaxSuggestions distinct completions for partial:
// keys containing it, then words longer than two characters taken from
// string values that contain it. Matching is case-insensitive and the order
// is discovery order.
func Suggest(records []domain.StorageRecord, partial string) []string {
	suggestions := []string{}
	if strings.TrimSpace(partial) == "" {
		return suggestions
	}

	seen := make(map[string]struct{})
	add := func(s string) bool {
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
		suggestions = append(suggestions, s)
		return len(suggestions) >= MaxSuggestions
	}

	for _, record := range records {
		if containsFold(record.Key, partial) {
			if add(record.Key) {
				return suggestions
			}
		}

		if !containsFold(record.Value, partial) || InferType(record.Value) != domain.DataTypeString {
			continue
		}
		for _, word := range strings.Fields(record.Value) {
			if utf8.RuneCountInString(word) > 2 && containsFold(word, partial) {
				if add(word) {
					return suggestions
				}
			}
		}
	}

	return suggestions
}

func containsFold(s, substr string) bool {
	start, _ := indexFold(s, substr, 0)
	return start >= 0
}

// Stats aggregates results by store kind, data type, size category and match
// location in a single pass
func Stats(results []domain.SearchResult) domain.SearchStats {
	stats := domain.SearchStats{
		Total:           len(results),
		ByStoreKind:     make(map[domain.StoreKind]int),
		ByDataType:      make(map[domain.DataType]int),
		BySizeCategory:  make(map[domain.SizeCategory]int),
		ByMatchLocation: make(map[domain.MatchLocation]int),
	}

	for _, r := range results {
		stats.ByStoreKind[r.Record.StoreKind]++
		stats.ByDataType[r.InferredType]++
		stats.BySizeCategory[r.SizeCategory]++
		stats.ByMatchLocation[r.MatchLocation]++
	}

	return stats
}

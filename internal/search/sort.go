package search

import (
	"sort"

	"github.com/cloo-solutions/storelens/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the ordering applied by SortResults
type SortField string

const (
	SortByRelevance SortField = "relevance"
	SortByKey       SortField = "key"
	SortByValue     SortField = "value"
	SortBySize      SortField = "size"
	SortByType      SortField = "type"
)

// SortOrder is ascending or descending
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSort validates sort parameters; empty values mean relevance/desc
func ParseSort(field, order string) (SortField, SortOrder, error) {
	f := SortField(field)
	if f == "" {
		f = SortByRelevance
	}
	switch f {
	case SortByRelevance, SortByKey, SortByValue, SortBySize, SortByType:
	default:
		return "", "", domain.Validationf("invalid sort field: %q", field)
	}

	o := SortOrder(order)
	if o == "" {
		o = SortDesc
	}
	if o != SortAsc && o != SortDesc {
		return "", "", domain.Validationf("invalid sort order: %q", order)
	}
	return f, o, nil
}

// SortResults returns a re-ordered copy of results. Relevance keeps the
// engine's score order regardless of order. Text fields use locale-aware
// collation; ties keep their relative order.
func SortResults(results []domain.SearchResult, field SortField, order SortOrder) []domain.SearchResult {
	sorted := make([]domain.SearchResult, len(results))
	copy(sorted, results)

	if field == SortByRelevance || field == "" {
		return sorted
	}

	col := collate.New(language.Und)
	var compare func(a, b domain.SearchResult) int
	switch field {
	case SortByKey:
		compare = func(a, b domain.SearchResult) int { return col.CompareString(a.Record.Key, b.Record.Key) }
	case SortByValue:
		compare = func(a, b domain.SearchResult) int { return col.CompareString(a.Record.Value, b.Record.Value) }
	case SortBySize:
		compare = func(a, b domain.SearchResult) int { return a.SizeBytes - b.SizeBytes }
	case SortByType:
		compare = func(a, b domain.SearchResult) int {
			return col.CompareString(string(a.InferredType), string(b.InferredType))
		}
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if order == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

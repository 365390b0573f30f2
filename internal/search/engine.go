// Package search implements the storage search engine: matching, scoring,
// highlighting and aggregation over in-memory record snapshots. Everything in
// this package is pure and safe for concurrent use.
package search

import (
	"sort"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// RecentWindow separates "recent" from "old" records for the age filter
const RecentWindow = 24 * time.Hour

// DefaultFilter returns the filter a fresh search starts from
func DefaultFilter() domain.SearchFilter {
	return domain.SearchFilter{
		Text:          "",
		MatchMode:     domain.MatchModeFuzzy,
		CaseSensitive: false,
		Scope:         domain.ScopeBoth,
		DataType:      domain.DataTypeAll,
		Size:          domain.SizeAll,
		Age:           domain.AgeAll,
	}
}

// Search evaluates filter against every record and returns the matches
// ordered by score, highest first. Ties keep input order. Blank filter text
// yields no results.
func Search(records []domain.StorageRecord, filter domain.SearchFilter) []domain.SearchResult {
	return SearchAt(records, filter, time.Now())
}

// SearchAt is Search with the age filter evaluated relative to now
func SearchAt(records []domain.StorageRecord, filter domain.SearchFilter, now time.Time) []domain.SearchResult {
	results := []domain.SearchResult{}
	if filter.IsBlank() {
		return results
	}

	m := newMatcher(filter)
	for _, record := range records {
		if result, ok := m.evaluate(record, filter, now); ok {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}

// Evaluate applies filter to a single record. ok is false when the record is
// excluded, either because nothing matched or a post-filter rejected it.
func Evaluate(record domain.StorageRecord, filter domain.SearchFilter, now time.Time) (domain.SearchResult, bool) {
	return newMatcher(filter).evaluate(record, filter, now)
}

func (m *matcher) evaluate(record domain.StorageRecord, filter domain.SearchFilter, now time.Time) (domain.SearchResult, bool) {
	var keyMatch, valueMatch bool
	var keyScore, valueScore float64

	if filter.Scope.IncludesKeys() {
		keyMatch, keyScore = m.score(record.Key)
	}
	if filter.Scope.IncludesValues() {
		valueMatch, valueScore = m.score(record.Value)
	}
	if !keyMatch && !valueMatch {
		return domain.SearchResult{}, false
	}

	location := domain.MatchLocationValue
	switch {
	case keyMatch && valueMatch:
		location = domain.MatchLocationBoth
	case keyMatch:
		location = domain.MatchLocationKey
	}

	dataType := InferType(record.Value)
	if filter.DataType != "" && filter.DataType != domain.DataTypeAll && dataType != filter.DataType {
		return domain.SearchResult{}, false
	}

	size := len(record.Value)
	sizeCategory := CategorizeSize(size)
	if filter.Size != "" && filter.Size != domain.SizeAll && sizeCategory != filter.Size {
		return domain.SearchResult{}, false
	}

	if !passesAge(record, filter.Age, now) {
		return domain.SearchResult{}, false
	}

	keyFragments := []domain.Fragment{{Text: record.Key}}
	if keyMatch {
		keyFragments = m.highlight(record.Key)
	}
	valueFragments := []domain.Fragment{{Text: record.Value}}
	if valueMatch {
		valueFragments = m.highlight(record.Value)
	}

	return domain.SearchResult{
		Record:           record,
		MatchLocation:    location,
		MatchScore:       max(keyScore, valueScore),
		HighlightedKey:   keyFragments,
		HighlightedValue: valueFragments,
		InferredType:     dataType,
		SizeBytes:        size,
		SizeCategory:     sizeCategory,
	}, true
}

// passesAge applies the age filter. Records without a modification time
// always pass.
func passesAge(record domain.StorageRecord, age domain.AgeFilter, now time.Time) bool {
	if age == "" || age == domain.AgeAll || record.LastModifiedAt == nil {
		return true
	}

	elapsed := time.Duration(now.UnixMilli()-*record.LastModifiedAt) * time.Millisecond
	recent := elapsed < RecentWindow

	switch age {
	case domain.AgeRecent:
		return recent
	case domain.AgeOld:
		return !recent
	}
	return true
}

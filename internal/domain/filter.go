package domain

import (
	"fmt"
	"strings"
)

// MatchMode is the comparison algorithm used by a search
type MatchMode string

const (
	MatchModeExact MatchMode = "exact"
	MatchModeFuzzy MatchMode = "fuzzy"
	MatchModeRegex MatchMode = "regex"
)

// SearchScope selects which side of a record is searched
type SearchScope string

const (
	ScopeKeys   SearchScope = "keys"
	ScopeValues SearchScope = "values"
	ScopeBoth   SearchScope = "both"
)

// IncludesKeys reports whether keys are searched
func (s SearchScope) IncludesKeys() bool {
	return s == ScopeKeys || s == ScopeBoth
}

// IncludesValues reports whether values are searched
func (s SearchScope) IncludesValues() bool {
	return s == ScopeValues || s == ScopeBoth
}

// DataType is the semantic type inferred from a raw value
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeObject  DataType = "object"
	DataTypeArray   DataType = "array"
	DataTypeNull    DataType = "null"
	DataTypeAll     DataType = "all"
)

// SizeCategory buckets a value's byte size
type SizeCategory string

const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
	SizeAll    SizeCategory = "all"
)

// AgeFilter restricts results by modification age
type AgeFilter string

const (
	AgeRecent AgeFilter = "recent"
	AgeOld    AgeFilter = "old"
	AgeAll    AgeFilter = "all"
)

// SearchFilter is the complete query configuration for one search pass.
// Empty post-filters behave like "all".
type SearchFilter struct {
	Text          string       `json:"text"`
	MatchMode     MatchMode    `json:"matchMode"`
	CaseSensitive bool         `json:"caseSensitive"`
	Scope         SearchScope  `json:"searchScope"`
	DataType      DataType     `json:"dataTypeFilter,omitempty"`
	Size          SizeCategory `json:"sizeFilter,omitempty"`
	Age           AgeFilter    `json:"ageFilter,omitempty"`
}

// WithDefaults fills unset mode and scope with fuzzy/both, the panel defaults
func (f SearchFilter) WithDefaults() SearchFilter {
	if f.MatchMode == "" {
		f.MatchMode = MatchModeFuzzy
	}
	if f.Scope == "" {
		f.Scope = ScopeBoth
	}
	if f.DataType == "" {
		f.DataType = DataTypeAll
	}
	if f.Size == "" {
		f.Size = SizeAll
	}
	if f.Age == "" {
		f.Age = AgeAll
	}
	return f
}

// ValidateSearchFilter checks enum fields. It does not compile regex
// patterns; pattern validity is reported separately.
func ValidateSearchFilter(f *SearchFilter) error {
	if f == nil {
		return fmt.Errorf("search filter cannot be nil")
	}

	switch f.MatchMode {
	case MatchModeExact, MatchModeFuzzy, MatchModeRegex:
	default:
		return Validationf("invalid match mode: %q", f.MatchMode)
	}

	switch f.Scope {
	case ScopeKeys, ScopeValues, ScopeBoth:
	default:
		return Validationf("invalid search scope: %q", f.Scope)
	}

	switch f.DataType {
	case "", DataTypeAll, DataTypeString, DataTypeNumber, DataTypeBoolean,
		DataTypeObject, DataTypeArray, DataTypeNull:
	default:
		return Validationf("invalid data type filter: %q", f.DataType)
	}

	switch f.Size {
	case "", SizeAll, SizeSmall, SizeMedium, SizeLarge:
	default:
		return Validationf("invalid size filter: %q", f.Size)
	}

	switch f.Age {
	case "", AgeAll, AgeRecent, AgeOld:
	default:
		return Validationf("invalid age filter: %q", f.Age)
	}

	return nil
}

// IsBlank reports whether the filter text has no searchable content
func (f SearchFilter) IsBlank() bool {
	return strings.TrimSpace(f.Text) == ""
}

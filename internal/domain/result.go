package domain

// MatchLocation records where a search matched
type MatchLocation string

const (
	MatchLocationKey   MatchLocation = "key"
	MatchLocationValue MatchLocation = "value"
	MatchLocationBoth  MatchLocation = "both"
)

// Fragment is a contiguous piece of highlighted text
type Fragment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// SearchResult is one matched record with derived metadata
type SearchResult struct {
	Record           StorageRecord
	MatchLocation    MatchLocation
	MatchScore       float64
	HighlightedKey   []Fragment
	HighlightedValue []Fragment
	InferredType     DataType
	SizeBytes        int
	SizeCategory     SizeCategory
}

// SearchStats aggregates a result list
type SearchStats struct {
	Total           int                   `json:"total"`
	ByStoreKind     map[StoreKind]int     `json:"byStorageType"`
	ByDataType      map[DataType]int      `json:"byDataType"`
	BySizeCategory  map[SizeCategory]int  `json:"bySizeCategory"`
	ByMatchLocation map[MatchLocation]int `json:"byMatchType"`
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// RecordRequest is one storage record sent inline with a request
type RecordRequest struct {
	Key            string `json:"key"`
	Value          string `json:"value"`
	StoreKind      string `json:"store_kind"`
	LastModifiedAt *int64 `json:"last_modified_at,omitempty"`
}

// FilterRequest mirrors domain.SearchFilter; unset enums take their defaults
type FilterRequest struct {
	Text          string `json:"text"`
	MatchMode     string `json:"match_mode,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
	Scope         string `json:"scope,omitempty"`
	DataType      string `json:"data_type,omitempty"`
	Size          string `json:"size,omitempty"`
	Age           string `json:"age,omitempty"`
}

type RecordResponse struct {
	Key            string `json:"key"`
	Value          string `json:"value"`
	StoreKind      string `json:"store_kind"`
	LastModifiedAt *int64 `json:"last_modified_at,omitempty"`
}

type FragmentResponse struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

type ResultResponse struct {
	Record           RecordResponse     `json:"record"`
	MatchType        string             `json:"match_type"`
	MatchScore       float64            `json:"match_score"`
	HighlightedKey   []FragmentResponse `json:"highlighted_key"`
	HighlightedValue []FragmentResponse `json:"highlighted_value"`
	DataType         string             `json:"data_type"`
	Size             int                `json:"size"`
	SizeCategory     string             `json:"size_category"`
}

// toRecords converts inline records. Store kinds accept the DevTools names.
func toRecords(reqs []RecordRequest) ([]domain.StorageRecord, error) {
	records := make([]domain.StorageRecord, 0, len(reqs))
	for _, r := range reqs {
		kind, err := domain.ParseStoreKind(r.StoreKind)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.StorageRecord{
			Key:            r.Key,
			Value:          r.Value,
			StoreKind:      kind,
			LastModifiedAt: r.LastModifiedAt,
		})
	}
	return records, nil
}

func (f FilterRequest) toDomain() domain.SearchFilter {
	return domain.SearchFilter{
		Text:          f.Text,
		MatchMode:     domain.MatchMode(f.MatchMode),
		CaseSensitive: f.CaseSensitive,
		Scope:         domain.SearchScope(f.Scope),
		DataType:      domain.DataType(f.DataType),
		Size:          domain.SizeCategory(f.Size),
		Age:           domain.AgeFilter(f.Age),
	}.WithDefaults()
}

func filterToResponse(f domain.SearchFilter) FilterRequest {
	return FilterRequest{
		Text:          f.Text,
		MatchMode:     string(f.MatchMode),
		CaseSensitive: f.CaseSensitive,
		Scope:         string(f.Scope),
		DataType:      string(f.DataType),
		Size:          string(f.Size),
		Age:           string(f.Age),
	}
}

func recordToResponse(r domain.StorageRecord) RecordResponse {
	return RecordResponse{
		Key:            r.Key,
		Value:          r.Value,
		StoreKind:      string(r.StoreKind),
		LastModifiedAt: r.LastModifiedAt,
	}
}

func fragmentsToResponse(fragments []domain.Fragment) []FragmentResponse {
	out := make([]FragmentResponse, len(fragments))
	for i, f := range fragments {
		out[i] = FragmentResponse{Text: f.Text, Matched: f.Matched}
	}
	return out
}

func resultsToResponse(results []domain.SearchResult) []ResultResponse {
	out := make([]ResultResponse, len(results))
	for i, r := range results {
		out[i] = ResultResponse{
			Record:           recordToResponse(r.Record),
			MatchType:        string(r.MatchLocation),
			MatchScore:       r.MatchScore,
			HighlightedKey:   fragmentsToResponse(r.HighlightedKey),
			HighlightedValue: fragmentsToResponse(r.HighlightedValue),
			DataType:         string(r.InferredType),
			Size:             r.SizeBytes,
			SizeCategory:     string(r.SizeCategory),
		}
	}
	return out
}

// resultsFromResponse reads back results a client got from POST /search.
// Only the fields stats aggregate are needed.
func resultsFromResponse(in []ResultResponse) ([]domain.SearchResult, error) {
	out := make([]domain.SearchResult, len(in))
	for i, r := range in {
		kind, err := domain.ParseStoreKind(r.Record.StoreKind)
		if err != nil {
			return nil, err
		}
		out[i] = domain.SearchResult{
			Record: domain.StorageRecord{
				Key:            r.Record.Key,
				Value:          r.Record.Value,
				StoreKind:      kind,
				LastModifiedAt: r.Record.LastModifiedAt,
			},
			MatchLocation: domain.MatchLocation(r.MatchType),
			MatchScore:    r.MatchScore,
			InferredType:  domain.DataType(r.DataType),
			SizeBytes:     r.Size,
			SizeCategory:  domain.SizeCategory(r.SizeCategory),
		}
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// pageLimit reads ?limit=, falling back to 20 for missing or invalid values
func pageLimit(r *http.Request) int {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

package client

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
)

type apiRecord struct {
	Key            string `json:"key"`
	Value          string `json:"value"`
	StoreKind      string `json:"store_kind"`
	LastModifiedAt *int64 `json:"last_modified_at,omitempty"`
}

type apiFilter struct {
	Text          string `json:"text"`
	MatchMode     string `json:"match_mode,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
	Scope         string `json:"scope,omitempty"`
	DataType      string `json:"data_type,omitempty"`
	Size          string `json:"size,omitempty"`
	Age           string `json:"age,omitempty"`
}

func toAPIFilter(f domain.SearchFilter) apiFilter {
	return apiFilter{
		Text:          f.Text,
		MatchMode:     string(f.MatchMode),
		CaseSensitive: f.CaseSensitive,
		Scope:         string(f.Scope),
		DataType:      string(f.DataType),
		Size:          string(f.Size),
		Age:           string(f.Age),
	}
}

type apiFragment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

type apiResult struct {
	Record           apiRecord     `json:"record"`
	MatchType        string        `json:"match_type"`
	MatchScore       float64       `json:"match_score"`
	HighlightedKey   []apiFragment `json:"highlighted_key"`
	HighlightedValue []apiFragment `json:"highlighted_value"`
	DataType         string        `json:"data_type"`
	Size             int           `json:"size"`
	SizeCategory     string        `json:"size_category"`
}

type apiSearchResponse struct {
	SearchID string      `json:"search_id,omitempty"`
	Results  []apiResult `json:"results"`
	Total    int         `json:"total"`
}

type apiPage[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

func pagePath(base, cursor string, limit int) string {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func printMore(out io.Writer, cursor string, hasMore bool) {
	if hasMore && cursor != "" {
		fmt.Fprintf(out, "\nMore results available. Use --cursor %s\n", cursor)
	}
}

func printRemoteResults(out io.Writer, resp apiSearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	fmt.Fprintf(out, "Found %d results:\n\n", resp.Total)
	for i, r := range resp.Results {
		fmt.Fprintf(out, "%d. %s (%s, %.2f)\n", i+1, bracketWire(r.HighlightedKey), r.MatchType, r.MatchScore)
		fmt.Fprintf(out, "   %s\n", truncate(bracketWire(r.HighlightedValue), 100))
		fmt.Fprintf(out, "   %s | %s | %d bytes\n", r.Record.StoreKind, r.DataType, r.Size)
		if i < len(resp.Results)-1 {
			fmt.Fprintln(out, strings.Repeat("-", 40))
		}
	}
}

func bracketWire(fragments []apiFragment) string {
	var b strings.Builder
	for _, f := range fragments {
		if f.Matched {
			b.WriteString("[" + f.Text + "]")
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}

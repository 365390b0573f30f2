// Package export serialises search results for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// Row is the flattened, exported form of one search result
type Row struct {
	Key        string               `json:"key"`
	Value      string               `json:"value"`
	StoreKind  domain.StoreKind     `json:"storeKind"`
	MatchType  domain.MatchLocation `json:"matchType"`
	MatchScore float64              `json:"matchScore"`
	DataType   domain.DataType      `json:"dataType"`
	Size       int                  `json:"size"`
}

var csvHeader = []string{"Key", "Value", "Storage Type", "Match Type", "Match Score", "Data Type", "Size"}

// Rows flattens results in their current order
func Rows(results []domain.SearchResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, Row{
			Key:        r.Record.Key,
			Value:      r.Record.Value,
			StoreKind:  r.Record.StoreKind,
			MatchType:  r.MatchLocation,
			MatchScore: r.MatchScore,
			DataType:   r.InferredType,
			Size:       r.SizeBytes,
		})
	}
	return rows
}

// ContentType returns the MIME type of an export format
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportFormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Render serialises results in format. It returns the payload and its
// content type.
func Render(format domain.ExportFormat, results []domain.SearchResult) ([]byte, string, error) {
	switch format {
	case domain.ExportFormatJSON:
		data, err := renderJSON(results)
		return data, ContentType(format), err
	case domain.ExportFormatCSV:
		data, err := renderCSV(results)
		return data, ContentType(format), err
	}
	return nil, "", domain.ErrInvalidExportFormat
}

func renderJSON(results []domain.SearchResult) ([]byte, error) {
	data, err := json.MarshalIndent(Rows(results), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json export: %w", err)
	}
	return data, nil
}

func renderCSV(results []domain.SearchResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range Rows(results) {
		record := []string{
			row.Key,
			row.Value,
			string(row.StoreKind),
			string(row.MatchType),
			strconv.FormatFloat(row.MatchScore, 'f', -1, 64),
			string(row.DataType),
			strconv.Itoa(row.Size),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv export: %w", err)
	}
	return buf.Bytes(), nil
}

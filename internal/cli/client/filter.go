package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/snapshot"
	"github.com/spf13/cobra"
)

// filterFlags holds the filter options shared by search, stats and saved save
type filterFlags struct {
	mode          string
	caseSensitive bool
	scope         string
	dataType      string
	size          string
	age           string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(domain.MatchModeFuzzy), "Match mode: exact, fuzzy or regex")
	cmd.Flags().BoolVarP(&f.caseSensitive, "case-sensitive", "c", false, "Match case exactly")
	cmd.Flags().StringVar(&f.scope, "scope", string(domain.ScopeBoth), "Search keys, values or both")
	cmd.Flags().StringVarP(&f.dataType, "type", "t", string(domain.DataTypeAll), "Keep values of this inferred type")
	cmd.Flags().StringVar(&f.size, "size", string(domain.SizeAll), "Keep values in this size category: small, medium, large")
	cmd.Flags().StringVar(&f.age, "age", string(domain.AgeAll), "Keep recent (<24h) or old records")
}

// filter builds and validates a SearchFilter for text
func (f *filterFlags) filter(text string) (domain.SearchFilter, error) {
	filter := domain.SearchFilter{
		Text:          text,
		MatchMode:     domain.MatchMode(strings.ToLower(f.mode)),
		CaseSensitive: f.caseSensitive,
		Scope:         domain.SearchScope(strings.ToLower(f.scope)),
		DataType:      domain.DataType(strings.ToLower(f.dataType)),
		Size:          domain.SizeCategory(strings.ToLower(f.size)),
		Age:           domain.AgeFilter(strings.ToLower(f.age)),
	}.WithDefaults()

	if err := domain.ValidateSearchFilter(&filter); err != nil {
		return domain.SearchFilter{}, err
	}
	return filter, nil
}

// loadRecords reads a snapshot file, or stdin when path is "-"
func loadRecords(stdin io.Reader, path string) ([]domain.StorageRecord, error) {
	if path == snapshot.Stdin {
		records, err := snapshot.Decode(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot from stdin: %w", err)
		}
		return records, nil
	}
	return snapshot.Load(path)
}

// bracket renders highlight fragments for a terminal, wrapping matches in [ ]
func bracket(fragments []domain.Fragment) string {
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

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

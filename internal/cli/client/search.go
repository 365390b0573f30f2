package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/export"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	filterFlags
	sortBy     string
	sortOrder  string
	limit      int
	exportAs   string
	outputJSON bool
}

// SearchCmd creates the offline search command.
func SearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <snapshot-file> <text>",
		Short: "Search a storage snapshot",
		Long: `Searches the records of a snapshot file locally. The file is either a JSON
array of records or a DevTools dump with localStorage, sessionStorage and
cookies sections. Use "-" to read the snapshot from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.outputJSON, _ = cmd.Flags().GetBool("output")
			records, err := loadRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runSearch(cmd.OutOrStdout(), records, args[1], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.sortBy, "sort", string(search.SortByRelevance), "Sort by relevance, key, value, size or type")
	cmd.Flags().StringVar(&opts.sortOrder, "order", string(search.SortDesc), "Sort order: asc or desc")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 for all)")
	cmd.Flags().StringVar(&opts.exportAs, "export", "", "Write results as json or csv instead of a listing")

	return cmd
}

func runSearch(out io.Writer, records []domain.StorageRecord, text string, opts searchOptions) error {
	filter, err := opts.filter(text)
	if err != nil {
		return err
	}

	field, order, err := search.ParseSort(opts.sortBy, opts.sortOrder)
	if err != nil {
		return err
	}
	if opts.limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}

	results := search.SortResults(search.Search(records, filter), field, order)
	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}

	if opts.exportAs != "" {
		format, err := domain.ParseExportFormat(strings.ToLower(opts.exportAs))
		if err != nil {
			return err
		}
		body, _, err := export.Render(format, results)
		if err != nil {
			return fmt.Errorf("failed to render export: %w", err)
		}
		_, err = out.Write(body)
		return err
	}

	if opts.outputJSON {
		return writeJSON(out, export.Rows(results))
	}

	printResults(out, results)
	return nil
}

func printResults(out io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	fmt.Fprintf(out, "Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (%s, %.2f)\n", i+1, bracket(r.HighlightedKey), r.MatchLocation, r.MatchScore)
		fmt.Fprintf(out, "   %s\n", truncate(bracket(r.HighlightedValue), 100))
		fmt.Fprintf(out, "   %s | %s | %d bytes\n", r.Record.StoreKind, r.InferredType, r.SizeBytes)
		if i < len(results)-1 {
			fmt.Fprintln(out, strings.Repeat("-", 40))
		}
	}
}

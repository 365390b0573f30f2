package client

import (
	"fmt"
	"io"
	"sort"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/spf13/cobra"
)

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "stats <snapshot-file> <text>",
		Short: "Summarize search results",
		Long:  "Counts the results of a search by storage type, data type, size category and match type.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			records, err := loadRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runStats(cmd.OutOrStdout(), records, args[1], flags, outputJSON)
		},
	}

	flags.register(cmd)
	return cmd
}

func runStats(out io.Writer, records []domain.StorageRecord, text string, flags filterFlags, outputJSON bool) error {
	filter, err := flags.filter(text)
	if err != nil {
		return err
	}

	stats := search.Stats(search.Search(records, filter))
	if outputJSON {
		return writeJSON(out, stats)
	}

	fmt.Fprintf(out, "Total: %d\n", stats.Total)
	printCounts(out, "Storage type", stats.ByStoreKind)
	printCounts(out, "Data type", stats.ByDataType)
	printCounts(out, "Size", stats.BySizeCategory)
	printCounts(out, "Match type", stats.ByMatchLocation)
	return nil
}

func printCounts[K ~string](out io.Writer, title string, counts map[K]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-8s %d\n", k, counts[K(k)])
	}
}

package client

import (
	"fmt"
	"io"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/spf13/cobra"
)

// SuggestCmd creates the suggest command.
func SuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <snapshot-file> <partial>",
		Short: "Suggest completions from a snapshot",
		Long:  "Lists up to 10 keys and value words containing the partial text, case-insensitively.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			records, err := loadRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runSuggest(cmd.OutOrStdout(), records, args[1], outputJSON)
		},
	}
}

func runSuggest(out io.Writer, records []domain.StorageRecord, partial string, outputJSON bool) error {
	suggestions := search.Suggest(records, partial)
	if outputJSON {
		return writeJSON(out, suggestions)
	}
	for _, s := range suggestions {
		fmt.Fprintln(out, s)
	}
	return nil
}

// ValidateCmd creates the validate command.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pattern>",
		Short: "Check a regex pattern",
		Long:  "Reports whether a pattern can be used with --mode regex. Exits non-zero when it cannot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runValidate(cmd.OutOrStdout(), args[0], outputJSON)
		},
	}
}

func runValidate(out io.Writer, pattern string, outputJSON bool) error {
	result := search.ValidatePattern(pattern)
	if outputJSON {
		if err := writeJSON(out, map[string]interface{}{"is_valid": result.Valid, "error": result.Message}); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(out, "Pattern is valid")
	}

	if !result.Valid {
		return fmt.Errorf("invalid pattern: %s", result.Message)
	}
	return nil
}

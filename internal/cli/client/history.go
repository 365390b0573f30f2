package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

type historyEntry struct {
	Text   string `json:"text"`
	UsedAt string `json:"used_at"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long:  "Lists the workspace's most recent search texts, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if clear {
				return runHistoryClear(cmd.Context(), cmd.OutOrStdout(), api)
			}
			return runHistory(cmd.Context(), cmd.OutOrStdout(), api, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the search history")
	return cmd
}

func runHistory(ctx context.Context, out io.Writer, api *APIClient, outputJSON bool) error {
	var resp struct {
		Entries []historyEntry `json:"entries"`
	}
	if err := api.Decode(ctx, http.MethodGet, "/history", nil, &resp); err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if outputJSON {
		return writeJSON(out, resp.Entries)
	}
	if len(resp.Entries) == 0 {
		fmt.Fprintln(out, "No recent searches.")
		return nil
	}
	for _, e := range resp.Entries {
		fmt.Fprintf(out, "%s  %s\n", e.UsedAt, e.Text)
	}
	return nil
}

func runHistoryClear(ctx context.Context, out io.Writer, api *APIClient) error {
	if _, err := api.Delete(ctx, "/history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintln(out, "History cleared")
	return nil
}

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

type savedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filter    apiFilter `json:"filter"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type runSavedRequest struct {
	SnapshotID string `json:"snapshot_id"`
	SortBy     string `json:"sort_by,omitempty"`
	SortOrder  string `json:"sort_order,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SavedCmd creates the saved parent command.
func SavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved searches",
		Long:  "Save named filters on the server and run them against stored snapshots.",
	}

	cmd.AddCommand(savedSaveCmd())
	cmd.AddCommand(savedListCmd())
	cmd.AddCommand(savedRunCmd())
	cmd.AddCommand(savedDeleteCmd())

	return cmd
}

func savedSaveCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "save <name> <text>",
		Short: "Save a filter under a name",
		Long:  "Saves a filter; an existing saved search with the same name is replaced.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSavedSave(cmd.Context(), cmd.OutOrStdout(), api, args[0], args[1], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func savedListCmd() *cobra.Command {
	var (
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSavedList(cmd.Context(), cmd.OutOrStdout(), api, cursor, limit, outputJSON)
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items")
	return cmd
}

func savedRunCmd() *cobra.Command {
	var req runSavedRequest

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a saved search against a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSavedRun(cmd.Context(), cmd.OutOrStdout(), api, args[0], req, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&req.SnapshotID, "snapshot", "s", "", "Snapshot ID to search")
	cmd.Flags().StringVar(&req.SortBy, "sort", "", "Sort by relevance, key, value, size or type")
	cmd.Flags().StringVar(&req.SortOrder, "order", "", "Sort order: asc or desc")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 0, "Maximum number of results (0 for all)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func savedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSavedDelete(cmd.Context(), cmd.OutOrStdout(), api, args[0])
		},
	}
}

func runSavedDelete(ctx context.Context, out io.Writer, api *APIClient, name string) error {
	if _, err := api.Delete(ctx, "/saved-searches/"+pathEscape(name)); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("no saved search named %q", name)
		}
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	fmt.Fprintf(out, "Deleted saved search %q\n", name)
	return nil
}

func runSavedSave(ctx context.Context, out io.Writer, api *APIClient, name, text string, flags filterFlags) error {
	filter, err := flags.filter(text)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"name":   name,
		"filter": toAPIFilter(filter),
	}

	var saved savedSearch
	if err := api.Decode(ctx, http.MethodPost, "/saved-searches", body, &saved); err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	fmt.Fprintf(out, "Saved search %q (%s)\n", saved.Name, saved.ID)
	return nil
}

func runSavedList(ctx context.Context, out io.Writer, api *APIClient, cursor string, limit int, outputJSON bool) error {
	var page apiPage[savedSearch]
	if err := api.Decode(ctx, http.MethodGet, pagePath("/saved-searches", cursor, limit), nil, &page); err != nil {
		return fmt.Errorf("failed to list saved searches: %w", err)
	}

	if outputJSON {
		return writeJSON(out, page)
	}
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No saved searches.")
		return nil
	}
	for _, s := range page.Items {
		fmt.Fprintf(out, "%-20s %-6s %-6s %q\n", s.Name, s.Filter.MatchMode, s.Filter.Scope, s.Filter.Text)
	}
	printMore(out, page.Cursor, page.HasMore)
	return nil
}

func runSavedRun(ctx context.Context, out io.Writer, api *APIClient, name string, req runSavedRequest, outputJSON bool) error {
	var resp apiSearchResponse
	if err := api.Decode(ctx, http.MethodPost, "/saved-searches/"+pathEscape(name)+"/run", req, &resp); err != nil {
		return fmt.Errorf("failed to run saved search: %w", err)
	}

	if outputJSON {
		return writeJSON(out, resp)
	}
	printRemoteResults(out, resp)
	return nil
}

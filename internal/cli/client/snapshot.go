package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/spf13/cobra"
)

type snapshotSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceURL   string `json:"source_url,omitempty"`
	RecordCount int    `json:"record_count"`
	CreatedAt   string `json:"created_at"`
}

// SnapshotCmd creates the snapshot parent command.
func SnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage snapshots stored on the server",
	}

	cmd.AddCommand(snapshotPushCmd())
	cmd.AddCommand(snapshotListCmd())

	return cmd
}

func snapshotPushCmd() *cobra.Command {
	var name, sourceURL string

	cmd := &cobra.Command{
		Use:   "push <snapshot-file|->",
		Short: "Upload a snapshot file",
		Long:  "Uploads the records of a snapshot file. The name defaults to the file name without extension.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSnapshotPush(cmd.Context(), cmd.OutOrStdout(), api, name, sourceURL, records)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Snapshot name")
	cmd.Flags().StringVar(&sourceURL, "url", "", "Page URL the snapshot was taken from")
	return cmd
}

func snapshotListCmd() *cobra.Command {
	var (
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSnapshotList(cmd.Context(), cmd.OutOrStdout(), api, cursor, limit, outputJSON)
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items")
	return cmd
}

func runSnapshotPush(ctx context.Context, out io.Writer, api *APIClient, name, sourceURL string, records []domain.StorageRecord) error {
	wire := make([]apiRecord, len(records))
	for i, r := range records {
		wire[i] = apiRecord{
			Key:            r.Key,
			Value:          r.Value,
			StoreKind:      string(r.StoreKind),
			LastModifiedAt: r.LastModifiedAt,
		}
	}

	body := map[string]interface{}{
		"name":       name,
		"source_url": sourceURL,
		"records":    wire,
	}

	var snap snapshotSummary
	if err := api.Decode(ctx, http.MethodPost, "/snapshots", body, &snap); err != nil {
		return fmt.Errorf("failed to push snapshot: %w", err)
	}

	fmt.Fprintf(out, "Pushed snapshot %s (%d records)\n", snap.ID, snap.RecordCount)
	return nil
}

func runSnapshotList(ctx context.Context, out io.Writer, api *APIClient, cursor string, limit int, outputJSON bool) error {
	var page apiPage[snapshotSummary]
	if err := api.Decode(ctx, http.MethodGet, pagePath("/snapshots", cursor, limit), nil, &page); err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if outputJSON {
		return writeJSON(out, page)
	}
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No snapshots.")
		return nil
	}
	for _, s := range page.Items {
		fmt.Fprintf(out, "%s  %-24s %5d records  %s\n", s.ID, s.Name, s.RecordCount, s.CreatedAt)
	}
	printMore(out, page.Cursor, page.HasMore)
	return nil
}

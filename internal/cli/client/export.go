package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

type exportJob struct {
	ID          string `json:"id"`
	SnapshotID  string `json:"snapshot_id"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	ResultCount int    `json:"result_count"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

// ExportCmd creates the export parent command.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export search results from stored snapshots",
		Long:  "Queues server-side exports to object storage and downloads the results.",
	}

	cmd.AddCommand(exportCreateCmd())
	cmd.AddCommand(exportStatusCmd())
	cmd.AddCommand(exportDownloadCmd())

	return cmd
}

func exportCreateCmd() *cobra.Command {
	var (
		flags  filterFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "create <snapshot-id> <text>",
		Short: "Queue an export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runExportCreate(cmd.Context(), cmd.OutOrStdout(), api, args[0], args[1], format, flags, outputJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or csv")
	return cmd
}

func exportStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <export-id>",
		Short: "Show export status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runExportStatus(cmd.Context(), cmd.OutOrStdout(), api, args[0], outputJSON)
		},
	}
}

func exportDownloadCmd() *cobra.Command {
	var (
		output string
		wait   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "download <export-id>",
		Short: "Download a completed export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runExportDownload(cmd.Context(), cmd.OutOrStdout(), api, args[0], output, wait)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (defaults to the name suggested by the server)")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Wait up to this long for the export to complete")
	return cmd
}

func runExportCreate(ctx context.Context, out io.Writer, api *APIClient, snapshotID, text, format string, flags filterFlags, outputJSON bool) error {
	filter, err := flags.filter(text)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"snapshot_id": snapshotID,
		"format":      format,
		"filter":      toAPIFilter(filter),
	}

	var job exportJob
	if err := api.Decode(ctx, http.MethodPost, "/exports", body, &job); err != nil {
		return fmt.Errorf("failed to request export: %w", err)
	}

	if outputJSON {
		return writeJSON(out, job)
	}
	fmt.Fprintf(out, "Queued export %s (%s)\n", job.ID, job.Status)
	return nil
}

func runExportStatus(ctx context.Context, out io.Writer, api *APIClient, id string, outputJSON bool) error {
	job, err := getExportJob(ctx, api, id)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(out, job)
	}
	fmt.Fprintf(out, "Export %s: %s\n", job.ID, job.Status)
	if job.Status == "completed" {
		fmt.Fprintf(out, "Results: %d\n", job.ResultCount)
	}
	if job.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", job.Error)
	}
	return nil
}

// exportPollInterval paces status checks while download --wait is pending.
const exportPollInterval = time.Second

func runExportDownload(ctx context.Context, out io.Writer, api *APIClient, id, output string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		job, err := getExportJob(ctx, api, id)
		if err != nil {
			return err
		}
		if job.Status == "completed" {
			break
		}
		if job.Status == "failed" {
			return fmt.Errorf("export %s failed: %s", id, job.Error)
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("export %s is %s", id, job.Status)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exportPollInterval):
		}
	}

	var link struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if err := api.Decode(ctx, http.MethodGet, "/exports/"+pathEscape(id)+"/download", nil, &link); err != nil {
		return fmt.Errorf("failed to get download URL: %w", err)
	}

	if output == "" {
		output = downloadName(link.Filename, id)
	}
	if err := api.DownloadFile(ctx, link.URL, output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", output)
	return nil
}

func getExportJob(ctx context.Context, api *APIClient, id string) (*exportJob, error) {
	var job exportJob
	if err := api.Decode(ctx, http.MethodGet, "/exports/"+pathEscape(id), nil, &job); err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &job, nil
}

// downloadName keeps only the base of the server's suggested name so a
// response cannot write outside the working directory.
func downloadName(suggested, id string) string {
	name := filepath.Base(filepath.Clean("/" + suggested))
	if name == "/" || name == "." || name == "" {
		return id
	}
	return name
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cloo-solutions/storelens/internal/cli"
	"github.com/cloo-solutions/storelens/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "storelens",
		Short: "Storelens CLI - search browser storage snapshots",
		Long: `Storelens searches localStorage, sessionStorage and cookie snapshots.

search, suggest, validate, stats and scan work offline on snapshot files.
history, saved, snapshot and export talk to a storelens server.

Environment variables:
  STORELENS_API_KEY   API key for authentication
  STORELENS_API_URL   API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.SuggestCmd())
	rootCmd.AddCommand(client.ValidateCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.ScanCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.SavedCmd())
	rootCmd.AddCommand(client.SnapshotCmd())
	rootCmd.AddCommand(client.ExportCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

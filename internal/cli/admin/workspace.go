package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloo-solutions/storelens/internal/config"
	"github.com/cloo-solutions/storelens/internal/database"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/repository"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func WorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
		Long:  "Create and list workspaces",
	}

	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")

	cmd.AddCommand(WorkspaceCreateCmd())
	cmd.AddCommand(WorkspaceListCmd())

	return cmd
}

func WorkspaceCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd, func(ctx context.Context, env adminEnv) error {
				ws, err := env.auth.CreateWorkspace(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to create workspace: %w", err)
				}
				return printWorkspace(cmd.OutOrStdout(), ws, outputFlag(cmd))
			})
		},
	}
}

func WorkspaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd, func(ctx context.Context, env adminEnv) error {
				workspaces, err := env.auth.ListWorkspaces(ctx)
				if err != nil {
					return fmt.Errorf("failed to list workspaces: %w", err)
				}
				return printWorkspaces(cmd.OutOrStdout(), workspaces, outputFlag(cmd))
			})
		},
	}
}

func workspaceJSON(ws *domain.Workspace) map[string]interface{} {
	return map[string]interface{}{
		"id":         ws.ID,
		"name":       ws.Name,
		"created_at": ws.CreatedAt,
	}
}

func printWorkspace(out io.Writer, ws *domain.Workspace, outputFormat string) error {
	if outputFormat == "json" {
		return writeJSON(out, workspaceJSON(ws))
	}
	fmt.Fprintf(out, "Workspace created: %s (%s)\n", ws.Name, ws.ID)
	return nil
}

func printWorkspaces(out io.Writer, workspaces []*domain.Workspace, outputFormat string) error {
	if outputFormat == "json" {
		items := make([]map[string]interface{}, len(workspaces))
		for i, ws := range workspaces {
			items[i] = workspaceJSON(ws)
		}
		return writeJSON(out, map[string]interface{}{"items": items})
	}

	if len(workspaces) == 0 {
		fmt.Fprintln(out, "No workspaces found")
		return nil
	}
	fmt.Fprintln(out, "Workspaces:")
	for _, ws := range workspaces {
		fmt.Fprintf(out, "  %s: %s (created: %s)\n", ws.ID, ws.Name, ws.CreatedAt.Format(timeLayout))
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

const timeLayout = "2006-01-02 15:04:05"

func outputFlag(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

// adminEnv is the database-backed wiring shared by admin subcommands.
type adminEnv struct {
	auth       *service.AuthService
	workspaces service.WorkspaceRepository
}

// withAuthService connects to the database for the duration of fn.
func withAuthService(cmd *cobra.Command, fn func(ctx context.Context, env adminEnv) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	workspaces := repository.NewWorkspaceRepository(pool)
	return fn(ctx, adminEnv{
		auth:       service.NewAuthService(workspaces, repository.NewAPIKeyRepository(pool), &service.DefaultUUIDGenerator{}),
		workspaces: workspaces,
	})
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "storelensd-admin",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

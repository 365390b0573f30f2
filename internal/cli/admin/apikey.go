package admin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// resolveWorkspaceID accepts a workspace ID or name
func resolveWorkspaceID(ctx context.Context, repo service.WorkspaceRepository, ref string) (string, error) {
	var (
		ws  *domain.Workspace
		err error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		ws, err = repo.GetByID(ctx, ref)
	} else {
		ws, err = repo.GetByName(ctx, ref)
	}
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		return "", fmt.Errorf("workspace not found: %s", ref)
	}
	if err != nil {
		return "", err
	}
	return ws.ID, nil
}

func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}

	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")

	cmd.AddCommand(APIKeyCreateCmd())
	cmd.AddCommand(APIKeyListCmd())
	cmd.AddCommand(APIKeyRevokeCmd())

	return cmd
}

func APIKeyCreateCmd() *cobra.Command {
	var wsRef, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for a workspace. The token is shown once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd, func(ctx context.Context, env adminEnv) error {
				workspaceID, err := resolveWorkspaceID(ctx, env.workspaces, wsRef)
				if err != nil {
					return err
				}

				token, err := env.auth.CreateAPIKey(ctx, workspaceID, name)
				if err != nil {
					return fmt.Errorf("failed to create API key: %w", err)
				}

				key, err := env.auth.FindAPIKeyByToken(ctx, token)
				if err != nil {
					return fmt.Errorf("failed to retrieve created key: %w", err)
				}
				return printCreatedKey(cmd.OutOrStdout(), key, token, outputFlag(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&wsRef, "workspace", "w", "", "Workspace ID or name (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "API key name (required)")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func APIKeyListCmd() *cobra.Command {
	var (
		wsRef      string
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys for a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd, func(ctx context.Context, env adminEnv) error {
				workspaceID, err := resolveWorkspaceID(ctx, env.workspaces, wsRef)
				if err != nil {
					return err
				}

				keys, err := env.auth.ListAPIKeys(ctx, workspaceID)
				if err != nil {
					return fmt.Errorf("failed to list API keys: %w", err)
				}
				if activeOnly {
					keys = activeKeys(keys)
				}
				return printAPIKeys(cmd.OutOrStdout(), workspaceID, keys, outputFlag(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&wsRef, "workspace", "w", "", "Workspace ID or name (required)")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Hide revoked keys")
	_ = cmd.MarkFlagRequired("workspace")

	return cmd
}

func APIKeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyID := args[0]
			return withAuthService(cmd, func(ctx context.Context, env adminEnv) error {
				if err := env.auth.RevokeAPIKey(ctx, keyID); err != nil {
					return fmt.Errorf("failed to revoke API key: %w", err)
				}

				out := cmd.OutOrStdout()
				if outputFlag(cmd) == "json" {
					return writeJSON(out, map[string]interface{}{"id": keyID, "revoked": true})
				}
				fmt.Fprintf(out, "API key %s revoked\n", keyID)
				return nil
			})
		},
	}
}

func activeKeys(keys []*domain.APIKey) []*domain.APIKey {
	active := make([]*domain.APIKey, 0, len(keys))
	for _, k := range keys {
		if !k.IsRevoked() {
			active = append(active, k)
		}
	}
	return active
}

func apiKeyJSON(k *domain.APIKey) map[string]interface{} {
	return map[string]interface{}{
		"id":           k.ID,
		"name":         k.Name,
		"workspace_id": k.WorkspaceID,
		"created_at":   k.CreatedAt,
		"revoked_at":   k.RevokedAt,
		"revoked":      k.IsRevoked(),
	}
}

func printCreatedKey(out io.Writer, key *domain.APIKey, token, outputFormat string) error {
	if outputFormat == "json" {
		payload := apiKeyJSON(key)
		payload["token"] = token
		return writeJSON(out, payload)
	}

	fmt.Fprintf(out, "API key created for workspace %s\n", key.WorkspaceID)
	fmt.Fprintf(out, "Key ID: %s\n", key.ID)
	fmt.Fprintf(out, "Key Name: %s\n", key.Name)
	fmt.Fprintf(out, "Token: %s\n", token)
	fmt.Fprintln(out, "\nSave this token now. It is not stored and cannot be shown again.")
	return nil
}

func printAPIKeys(out io.Writer, workspaceID string, keys []*domain.APIKey, outputFormat string) error {
	if outputFormat == "json" {
		items := make([]map[string]interface{}, len(keys))
		for i, k := range keys {
			items[i] = apiKeyJSON(k)
		}
		return writeJSON(out, map[string]interface{}{"items": items})
	}

	if len(keys) == 0 {
		fmt.Fprintf(out, "No API keys found for workspace %s\n", workspaceID)
		return nil
	}
	fmt.Fprintf(out, "API keys for workspace %s:\n", workspaceID)
	for _, k := range keys {
		status := "active"
		if k.IsRevoked() {
			status = "revoked " + k.RevokedAt.Format(timeLayout)
		}
		fmt.Fprintf(out, "  %s: %s (%s, created: %s)\n", k.ID, k.Name, status, k.CreatedAt.Format(timeLayout))
	}
	return nil
}

package admin

import (
	"errors"
	"fmt"

	"github.com/cloo-solutions/storelens/internal/config"
	"github.com/cloo-solutions/storelens/internal/database"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Apply, roll back and inspect database migrations from ./migrations",
	}
	cmd.PersistentFlags().String("dir", database.DefaultMigrationsDir, "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(mg *database.Migrator) error {
				version, err := mg.Up()
				if err != nil {
					return err
				}
				return printVersion(cmd, version, nil)
			})
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(cmd, func(mg *database.Migrator) error {
				version, err := mg.Down(steps)
				return printVersion(cmd, version, err)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(mg *database.Migrator) error {
				version, err := mg.Version()
				return printVersion(cmd, version, err)
			})
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, version uint, err error) error {
	switch {
	case errors.Is(err, database.ErrDirty):
		fmt.Fprintf(cmd.OutOrStdout(), "Version %d (dirty)\n", version)
		return nil
	case err != nil:
		return err
	case version == 0:
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Version %d\n", version)
	}
	return nil
}

func withMigrator(cmd *cobra.Command, fn func(mg *database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dir, _ := cmd.Flags().GetString("dir")

	mg, err := database.NewMigrator(cfg.DatabaseURL, dir)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

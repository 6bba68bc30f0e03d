package commands

import (
	"fmt"

	"github.com/benvon/finance-dashboard/internal/config"
	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command with up and version subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Apply the embedded schema migrations or report the current version.",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applied, err := database.Migrate(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema already up to date.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
			if dirty {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: schema is dirty; a migration failed part way.")
			}
			return nil
		},
	}
}

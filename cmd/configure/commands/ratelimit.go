package commands

import (
	"fmt"

	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the per-user rate limit on authenticated routes (e.g. 5-S, 100-M). Stored in database.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			repo := database.NewRatelimitConfigRepository(db)
			c, err := repo.Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			if c == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No rate limit configuration in database. Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration:")
			fmt.Fprintf(cmd.OutOrStdout(), "  Rate: %s\n", c.Rate)
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := database.NormalizeRate(rate)
			if err != nil {
				return fmt.Errorf("--rate: %w", err)
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			repo := database.NewRatelimitConfigRepository(db)
			c := &models.RatelimitConfig{Rate: normalized}
			if err := repo.Set(cmd.Context(), c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate limit set to %s. Running servers pick it up on their next reload.\n", normalized)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}

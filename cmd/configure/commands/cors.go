package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update the browser origins allowed to call /api/v1 (stored in database).",
	}
	cmd.AddCommand(newCorsListCmd())
	cmd.AddCommand(newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			repo := database.NewCorsConfigRepository(db)
			c, err := repo.Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			if c == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No CORS configuration in database. Use 'cors set' to add one.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration:")
			fmt.Fprintf(cmd.OutOrStdout(), "  Allowed origins: %s\n", c.AllowedOrigins)
			fmt.Fprintf(cmd.OutOrStdout(), "  Allow credentials: %v\n", c.AllowCredentials)
			fmt.Fprintf(cmd.OutOrStdout(), "  Max-Age: %d\n", c.MaxAge)
			return nil
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.Join(database.AllowedOriginsSlice(origins), ",")
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age cannot be negative")
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			repo := database.NewCorsConfigRepository(db)
			c := &models.CorsConfig{
				AllowedOrigins:   origins,
				AllowCredentials: allowCreds,
				MaxAge:           maxAge,
			}
			if err := repo.Set(cmd.Context(), c); err != nil {
				return fmt.Errorf("set cors config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CORS configuration updated (%d origin(s)).\n", len(database.AllowedOriginsSlice(origins)))
			return nil
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/validation"
	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command for inspecting synced accounts.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect synced users",
		Long:  "List, show or delete users mirrored from the identity provider.",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersShowCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List synced users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || limit > 500 {
				return fmt.Errorf("--limit must be between 1 and 500")
			}
			if offset < 0 {
				return fmt.Errorf("--offset cannot be negative")
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			repo := database.NewUserRepository(db)
			total, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			users, err := repo.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintf(out, "No users (total %d)\n", total)
				return nil
			}
			fmt.Fprintf(out, "Users %d-%d of %d:\n", offset+1, offset+len(users), total)
			for _, u := range users {
				printUser(out, u)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum users to print")
	cmd.Flags().IntVar(&offset, "offset", 0, "Users to skip")
	return cmd
}

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <external-id>",
		Short: "Show one user by identity-provider id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateExternalID(args[0]); err != nil {
				return err
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			user, err := database.NewUserRepository(db).GetByExternalID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func newUsersDeleteCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete <external-id>",
		Short: "Delete one user by identity-provider id",
		Long:  "Remove a synced user. The next user.created or user.updated delivery for the id recreates it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to delete without --yes")
			}
			if err := validation.ValidateExternalID(args[0]); err != nil {
				return err
			}
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			deleted, err := database.NewUserRepository(db).DeleteByExternalID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "No user with external id %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")
	return cmd
}

func printUser(out io.Writer, u *models.User) {
	fmt.Fprintf(out, "  - External ID: %s\n", u.ExternalID)
	fmt.Fprintf(out, "    ID: %s\n", u.ID)
	fmt.Fprintf(out, "    Email: %s\n", u.Email)
	fmt.Fprintf(out, "    Name: %s\n", u.Name)
	if u.Image != nil {
		fmt.Fprintf(out, "    Image: %s\n", *u.Image)
	}
	fmt.Fprintf(out, "    Updated: %s\n", u.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
}

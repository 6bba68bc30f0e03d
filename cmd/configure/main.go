package main

import (
	"fmt"
	"os"

	"github.com/benvon/finance-dashboard/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "finance-dashboard-configure",
		Short:        "Operator tool for the finance dashboard API",
		Long:         "CLI tool for migrations, runtime settings, synced users and webhook test deliveries",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewWebhookCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/finance-dashboard/internal/config"
	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/middleware"
	"github.com/benvon/finance-dashboard/internal/services/session"
	"github.com/benvon/finance-dashboard/internal/services/webhook"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var skipRedis bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test runtime configuration",
		Long:  "Check the webhook secret, database, Redis and the session key set endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if _, err := webhook.NewSvixVerifier(cfg.ClerkWebhookSecret); err != nil {
				return fmt.Errorf("webhook secret: %w", err)
			}
			fmt.Fprintln(out, "✓ Webhook signing secret is well-formed")

			db, err := database.New(cfg.DatabaseURL, database.WithMaxOpenConns(1))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()
			version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Database is reachable (schema version %d, dirty=%v)\n", version, dirty)

			if !skipRedis {
				limiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
				if err != nil {
					return fmt.Errorf("redis: %w", err)
				}
				_ = limiter.Close()
				fmt.Fprintln(out, "✓ Redis is reachable")
			}

			if !cfg.SessionAuthEnabled() {
				fmt.Fprintln(out, "- Session auth not configured (CLERK_ISSUER and CLERK_JWKS_URL unset)")
				fmt.Fprintln(out, "\n✓ Configuration test passed")
				return nil
			}
			fmt.Fprintf(out, "\nTesting JWKS endpoint: %s\n", cfg.ClerkJWKSURL)
			keys, err := session.NewJWKSManager(cfg.ClerkJWKSURL, nil).Refresh(ctx)
			if err != nil {
				return fmt.Errorf("failed to load JWKS: %w", err)
			}
			fmt.Fprintf(out, "✓ JWKS endpoint returned %d key(s)\n", keys.Len())

			fmt.Fprintln(out, "\n✓ Configuration test passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipRedis, "skip-redis", false, "Skip the Redis reachability check")

	return cmd
}

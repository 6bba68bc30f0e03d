package commands

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/benvon/finance-dashboard/internal/config"
	"github.com/benvon/finance-dashboard/internal/handlers"
	"github.com/benvon/finance-dashboard/internal/services/webhook"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewWebhookCmd creates the webhook command for producing signed test deliveries.
func NewWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Sign and send test webhook deliveries",
	}
	cmd.AddCommand(newWebhookSignCmd())
	return cmd
}

func newWebhookSignCmd() *cobra.Command {
	var payloadFile, msgID, sendTo string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a payload with the configured webhook secret",
		Long: "Print the svix-id, svix-timestamp and svix-signature headers for a payload file. " +
			"With --send the signed delivery is posted to the given base URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if payloadFile == "" {
				return fmt.Errorf("--payload-file is required")
			}
			payload, err := os.ReadFile(payloadFile)
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			verifier, err := webhook.NewSvixVerifier(cfg.ClerkWebhookSecret)
			if err != nil {
				return err
			}
			if msgID == "" {
				msgID = "msg_" + uuid.NewString()
			}
			headers, err := verifier.Sign(msgID, time.Now(), payload)
			if err != nil {
				return fmt.Errorf("sign payload: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range []string{webhook.HeaderID, webhook.HeaderTimestamp, webhook.HeaderSignature} {
				fmt.Fprintf(out, "%s: %s\n", name, headers.Get(name))
			}
			if sendTo == "" {
				return nil
			}
			return sendDelivery(cmd, sendTo+handlers.WebhookPath, payload, headers)
		},
	}
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "Path to the JSON payload (required)")
	cmd.Flags().StringVar(&msgID, "id", "", "Message id (default: random)")
	cmd.Flags().StringVar(&sendTo, "send", "", "Base URL to POST the signed delivery to, e.g. http://localhost:8080")
	return cmd
}

func sendDelivery(cmd *cobra.Command, url string, payload []byte, headers http.Header) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header = headers.Clone()
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send delivery: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
		}
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s -> %s\n", url, resp.Status)
	if len(body) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delivery rejected with status %d", resp.StatusCode)
	}
	return nil
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/services/webhook"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// WebhookPath is where the identity provider delivers user lifecycle events.
const WebhookPath = "/api/webhooks/clerk"

// maxWebhookBodyBytes bounds a single delivery.
const maxWebhookBodyBytes = 1 << 20

// EventApplier applies a verified event to local state.
type EventApplier interface {
	Apply(ctx context.Context, ev webhook.Event) (webhook.Outcome, error)
}

// WebhookHandler receives signed identity-provider deliveries and keeps the
// users table in step with them.
type WebhookHandler struct {
	verifier webhook.Verifier
	applier  EventApplier
	logger   *zap.Logger
}

// NewWebhookHandler creates a webhook handler. A nil verifier means no signing
// secret was configured, which is refused.
func NewWebhookHandler(verifier webhook.Verifier, applier EventApplier, log *zap.Logger) (*WebhookHandler, error) {
	if verifier == nil {
		return nil, webhook.ErrMissingSecret
	}
	if applier == nil {
		return nil, errors.New("webhook handler requires an event applier")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{verifier: verifier, applier: applier, logger: log}, nil
}

// RegisterRoutes registers the webhook route
func (h *WebhookHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(WebhookPath, h.HandleDelivery).Methods(http.MethodPost)
}

// HandleDelivery verifies, parses and applies one delivery. Responses are
// plain text; 4xx tells the provider not to retry, 5xx asks it to.
func (h *WebhookHandler) HandleDelivery(w http.ResponseWriter, r *http.Request) {
	msgID := logger.SanitizeString(r.Header.Get(webhook.HeaderID), logger.MaxUserIDLength)

	if missing := webhook.MissingHeaders(r.Header); len(missing) > 0 {
		h.logger.Warn("webhook_missing_headers",
			zap.Strings("missing", missing),
			zap.String("remote_addr", logger.SanitizeString(r.RemoteAddr, 0)),
		)
		respondText(w, http.StatusBadRequest, "missing webhook headers")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("webhook_body_read_failed",
			zap.String("svix_id", msgID),
			zap.String("error", logger.SanitizeError(err)),
		)
		// The provider contract is 200, 400 or 500.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondText(w, http.StatusBadRequest, "payload too large")
			return
		}
		respondText(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := h.verifier.Verify(body, r.Header); err != nil {
		h.logger.Warn("webhook_verification_failed",
			zap.String("svix_id", msgID),
			zap.String("reason", logger.SanitizeError(err)),
		)
		respondText(w, http.StatusBadRequest, "invalid signature")
		return
	}

	ev, err := webhook.ParseEvent(body)
	if err != nil {
		h.logger.Warn("webhook_malformed_payload",
			zap.String("svix_id", msgID),
			zap.String("reason", logger.SanitizeError(err)),
		)
		respondText(w, http.StatusBadRequest, "malformed payload")
		return
	}

	outcome, err := h.applier.Apply(r.Context(), ev)
	switch {
	case err == nil:
	case webhook.IsPersistenceError(err):
		h.logger.Error("webhook_persistence_failed",
			zap.String("svix_id", msgID),
			zap.String("event_type", logger.SanitizeString(ev.EventType(), logger.MaxUserIDLength)),
			zap.String("error", logger.SanitizeError(err)),
		)
		respondText(w, http.StatusInternalServerError, "failed to persist event")
		return
	case errors.Is(err, webhook.ErrMalformedPayload):
		h.logger.Warn("webhook_malformed_payload",
			zap.String("svix_id", msgID),
			zap.String("reason", logger.SanitizeError(err)),
		)
		respondText(w, http.StatusBadRequest, "malformed payload")
		return
	default:
		h.logger.Error("webhook_apply_failed",
			zap.String("svix_id", msgID),
			zap.String("error", logger.SanitizeError(err)),
		)
		respondText(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Debug("webhook_delivery_handled",
		zap.String("svix_id", msgID),
		zap.String("event_type", logger.SanitizeString(ev.EventType(), logger.MaxUserIDLength)),
		zap.String("outcome", string(outcome)),
	)
	respondText(w, http.StatusOK, "")
}

package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/finance-dashboard/internal/database"
	logpkg "github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/finance-dashboard/internal/services/webhook"

// Outcome describes what Apply did with an event.
type Outcome string

const (
	OutcomeUpserted       Outcome = "upserted"
	OutcomeDeleted        Outcome = "deleted"
	OutcomeDeleteNoMatch  Outcome = "delete_no_match"
	OutcomeSkippedNoEmail Outcome = "skipped_no_email"
	OutcomeIgnored        Outcome = "ignored"
)

// Reconciler applies one verified event to the user store. It holds no
// per-request state and is safe for concurrent use.
type Reconciler struct {
	store  database.UserStore
	logger *zap.Logger
	tracer trace.Tracer
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store database.UserStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Apply performs at most one store call for ev. Store failures are returned
// as *PersistenceError and are not retried here; the provider redelivers.
func (r *Reconciler) Apply(ctx context.Context, ev Event) (outcome Outcome, err error) {
	ctx, span := r.tracer.Start(ctx, "webhook.reconcile",
		trace.WithAttributes(attribute.String("webhook.event_type", ev.EventType())),
	)
	defer func() {
		span.SetAttributes(attribute.String("webhook.outcome", string(outcome)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reconcile failed")
		}
		span.End()
	}()

	switch e := ev.(type) {
	case *UserUpserted:
		return r.upsert(ctx, e)
	case *UserDeleted:
		return r.delete(ctx, e)
	case *Unknown:
		r.logger.Debug("webhook_event_ignored",
			zap.String("event_type", logpkg.SanitizeString(e.Type, logpkg.MaxUserIDLength)),
		)
		return OutcomeIgnored, nil
	default:
		return "", fmt.Errorf("%w: unsupported event %T", ErrMalformedPayload, ev)
	}
}

func (r *Reconciler) upsert(ctx context.Context, e *UserUpserted) (Outcome, error) {
	externalID := e.User.ID
	attrs, err := e.User.Attributes()
	if errors.Is(err, ErrNoEmail) {
		// Acknowledged without a write so the provider does not redeliver an
		// event that can never succeed.
		r.logger.Warn("webhook_user_skipped_no_email",
			zap.String("event_type", e.Type),
			zap.String("external_id", logpkg.SanitizeUserID(externalID)),
		)
		return OutcomeSkippedNoEmail, nil
	}
	if err != nil {
		return "", err
	}
	if err := validation.Validate.Struct(attrs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, validation.FieldErrors(err))
	}

	user, err := r.store.Upsert(ctx, externalID, attrs)
	if err != nil {
		r.logger.Error("webhook_user_upsert_failed",
			zap.String("event_type", e.Type),
			zap.String("external_id", logpkg.SanitizeUserID(externalID)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return "", &PersistenceError{Op: "upsert", ExternalID: externalID, Err: err}
	}

	fields := []zap.Field{
		zap.String("event_type", e.Type),
		zap.String("external_id", logpkg.SanitizeUserID(externalID)),
		zap.String("email", logpkg.MaskEmail(attrs.Email)),
	}
	if user != nil {
		fields = append(fields, zap.String("user_id", user.ID.String()))
	}
	r.logger.Info("webhook_user_upserted", fields...)
	return OutcomeUpserted, nil
}

func (r *Reconciler) delete(ctx context.Context, e *UserDeleted) (Outcome, error) {
	if e.ExternalID == "" {
		r.logger.Debug("webhook_user_delete_without_id")
		return OutcomeIgnored, nil
	}

	deleted, err := r.store.DeleteByExternalID(ctx, e.ExternalID)
	if err != nil {
		r.logger.Error("webhook_user_delete_failed",
			zap.String("external_id", logpkg.SanitizeUserID(e.ExternalID)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return "", &PersistenceError{Op: "delete", ExternalID: e.ExternalID, Err: err}
	}

	if !deleted {
		r.logger.Info("webhook_user_delete_no_match",
			zap.String("external_id", logpkg.SanitizeUserID(e.ExternalID)),
		)
		return OutcomeDeleteNoMatch, nil
	}

	r.logger.Info("webhook_user_deleted",
		zap.String("external_id", logpkg.SanitizeUserID(e.ExternalID)),
	)
	return OutcomeDeleted, nil
}

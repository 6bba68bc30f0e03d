package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/finance-dashboard/internal/database"
	logpkg "github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier verifies a bearer session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.SessionClaims, error)
}

// Auth authenticates the bearer session token and resolves the local user.
// A subject seen for the first time is created from its claims; without an
// email claim it is refused until the webhook provisions it.
func Auth(verifier TokenVerifier, users database.UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing or malformed Authorization header", logger)
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.Debug("session_token_rejected",
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", logger)
				return
			}

			user, err := resolveUser(ctx, users, claims, logger)
			switch {
			case errors.Is(err, errNotProvisioned):
				respondErrorJSON(w, r, http.StatusForbidden, "Forbidden", "Account not provisioned", logger)
				return
			case err != nil:
				logger.Error("session_user_lookup_failed",
					zap.String("external_id", logpkg.SanitizeUserID(claims.Sub)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to resolve user", logger)
				return
			}

			ctx = request.WithClaims(ctx, claims)
			ctx = request.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errNotProvisioned = errors.New("account not provisioned")

func resolveUser(ctx context.Context, users database.UserLookup, claims *models.SessionClaims, logger *zap.Logger) (*models.User, error) {
	user, err := users.GetByExternalID(ctx, claims.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if claims.Email == "" {
		logger.Warn("session_user_not_provisioned",
			zap.String("external_id", logpkg.SanitizeUserID(claims.Sub)),
		)
		return nil, errNotProvisioned
	}

	candidate := &models.User{
		ExternalID: claims.Sub,
		Email:      claims.Email,
		Name:       models.DisplayName(claims.FirstName, claims.LastName),
	}
	if claims.ImageURL != "" {
		image := claims.ImageURL
		candidate.Image = &image
	}

	user, created, err := users.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("session_user_created",
			zap.String("external_id", logpkg.SanitizeUserID(claims.Sub)),
			zap.String("email", logpkg.MaskEmail(claims.Email)),
		)
	}
	return user, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

package database

import (
	"context"

	"github.com/benvon/finance-dashboard/internal/models"
)

// UserStore is the keyed persistence contract the webhook reconciler consumes.
// Both calls are single statements and atomic per call.
type UserStore interface {
	Upsert(ctx context.Context, externalID string, attrs models.UserAttributes) (*models.User, error)
	DeleteByExternalID(ctx context.Context, externalID string) (bool, error)
}

// UserLookup is what session authentication needs to resolve the caller.
type UserLookup interface {
	GetOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// CorsConfigStore is read by the CORS reloader.
type CorsConfigStore interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// RatelimitConfigStore is read, and seeded with a default, by the rate limit reloader.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserStore            = (*UserRepository)(nil)
	_ UserLookup           = (*UserRepository)(nil)
	_ CorsConfigStore      = (*CorsConfigRepository)(nil)
	_ RatelimitConfigStore = (*RatelimitConfigRepository)(nil)
)

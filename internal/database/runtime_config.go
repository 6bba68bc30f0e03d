package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/benvon/finance-dashboard/internal/models"
)

const defaultConfigKey = "default"

// rateFormat mirrors the "<limit>-<period>" grammar understood by ulule/limiter.
var rateFormat = regexp.MustCompile(`^[1-9][0-9]*-[SMHD]$`)

// CorsConfigRepository handles CORS configuration in the database.
type CorsConfigRepository struct {
	db *DB
}

// NewCorsConfigRepository creates a new CORS config repository.
func NewCorsConfigRepository(db *DB) *CorsConfigRepository {
	return &CorsConfigRepository{db: db}
}

// Get retrieves the default CORS config, or nil when none is stored.
func (r *CorsConfigRepository) Get(ctx context.Context) (*models.CorsConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at
		FROM cors_config WHERE config_key = $1
	`, defaultConfigKey)
	c := &models.CorsConfig{}
	err := row.Scan(
		&c.ConfigKey,
		&c.AllowedOrigins,
		&c.AllowCredentials,
		&c.MaxAge,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cors config: %w", err)
	}
	return c, nil
}

// Set upserts the default CORS config. AllowedOrigins is comma-separated.
func (r *CorsConfigRepository) Set(ctx context.Context, c *models.CorsConfig) error {
	origins := AllowedOriginsSlice(c.AllowedOrigins)
	if len(origins) == 0 {
		return fmt.Errorf("allowed_origins cannot be empty")
	}
	maxAge := c.MaxAge
	if maxAge < 0 {
		return fmt.Errorf("max_age cannot be negative")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cors_config (config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (config_key) DO UPDATE SET
			allowed_origins = EXCLUDED.allowed_origins,
			allow_credentials = EXCLUDED.allow_credentials,
			max_age = EXCLUDED.max_age,
			updated_at = EXCLUDED.updated_at
	`, defaultConfigKey, strings.Join(origins, ","), c.AllowCredentials, maxAge, now)
	if err != nil {
		return fmt.Errorf("set cors config: %w", err)
	}
	return nil
}

// AllowedOriginsSlice splits a comma-separated origin list, trimming and de-duplicating.
func AllowedOriginsSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	seen := make(map[string]bool)
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// RatelimitConfigRepository handles rate limit configuration in the database.
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get retrieves the default rate limit config, or nil when none is stored.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, defaultConfigKey)
	c := &models.RatelimitConfig{}
	err := row.Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// Set upserts the default rate limit config.
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate, err := NormalizeRate(c.Rate)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, defaultConfigKey, rate, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}

// NormalizeRate trims and upper-cases a rate and checks it against the limiter grammar.
func NormalizeRate(raw string) (string, error) {
	rate := strings.ToUpper(strings.TrimSpace(raw))
	if rate == "" {
		return "", fmt.Errorf("rate cannot be empty")
	}
	if !rateFormat.MatchString(rate) {
		return "", fmt.Errorf("invalid rate %q (expected e.g. 5-S, 100-M, 1000-H)", raw)
	}
	return rate, nil
}

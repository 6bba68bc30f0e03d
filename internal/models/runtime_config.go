package models

import "time"

const (
	// DefaultCorsMaxAge is the preflight cache lifetime used when no row exists.
	DefaultCorsMaxAge = 86400
	// DefaultRatelimitRate applies to session routes until an operator sets one.
	DefaultRatelimitRate = "5-S"
)

// CorsConfig holds the dashboard frontend's CORS policy.
type CorsConfig struct {
	ConfigKey        string    `json:"config_key"`
	AllowedOrigins   string    `json:"allowed_origins"` // comma-separated
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RatelimitConfig holds a limiter rate in "<limit>-<period>" form, e.g. "5-S" or "100-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

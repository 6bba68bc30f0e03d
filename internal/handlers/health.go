package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 5 * time.Second

var errNotConfigured = errors.New("dependency not configured")

// Pinger is a dependency the extended health check probes.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// PingContext calls f(ctx).
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests
type HealthChecker struct {
	db    Pinger
	redis Pinger
}

// NewHealthChecker creates a new health checker. redis may be nil.
func NewHealthChecker(db Pinger, redis Pinger) *HealthChecker {
	return &HealthChecker{db: db, redis: redis}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		if err := probe(r.Context(), h.db); err != nil {
			response.Status = "unhealthy"
			checks["database"] = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}

		switch {
		case h.redis == nil:
			checks["redis"] = "not configured"
		case probe(r.Context(), h.redis) != nil:
			response.Status = "unhealthy"
			checks["redis"] = "unhealthy"
		default:
			checks["redis"] = "healthy"
		}

		response.Checks = checks
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func probe(ctx context.Context, p Pinger) error {
	if p == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.PingContext(ctx)
}

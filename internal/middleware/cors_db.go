package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const defaultFrontendOrigin = "http://localhost:3000"

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
// The webhook route is server-to-server and is mounted outside it.
type CORSReloader struct {
	repo     database.CorsConfigStore
	fallback string // FRONTEND_URL, comma-separated
	log      *zap.Logger
	interval time.Duration
	mu       sync.RWMutex
	current  *cors.Cors
}

// NewCORSReloader creates a CORS middleware that loads config from the DB and hot-reloads it.
func NewCORSReloader(repo database.CorsConfigStore, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	r := &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
	r.load(context.Background())
	return r
}

// Middleware applies the current policy. gorilla/mux rebuilds the chain per
// request, so this only reads state.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			c := r.current
			r.mu.RUnlock()
			c.ServeHTTP(w, req, next.ServeHTTP)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// options resolves the stored policy, falling back to the frontend URL when
// no row exists or the read fails.
func (r *CORSReloader) options(ctx context.Context) cors.Options {
	origins := database.AllowedOriginsSlice(r.fallback)
	allowCreds := true
	maxAge := models.DefaultCorsMaxAge

	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
	case cfg != nil:
		origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		allowCreds = cfg.AllowCredentials
		maxAge = cfg.MaxAge
	}
	if len(origins) == 0 {
		origins = []string{defaultFrontendOrigin}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	c := cors.New(r.options(ctx))
	r.mu.Lock()
	r.current = c
	r.mu.Unlock()
}

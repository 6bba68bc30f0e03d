package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.uber.org/zap"
)

// RateLimitReloader wraps ulule/limiter and periodically reloads rate limit config from the database.
type RateLimitReloader struct {
	store       limiter.Store
	repo        database.RatelimitConfigStore
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     *stdlibmw.Middleware
	rate        string
}

// NewRateLimitReloader creates a rate limit middleware over store. The rate
// is read from the DB now and on every reload tick; when no row exists the
// default is written so operators can see it.
func NewRateLimitReloader(store limiter.Store, repo database.RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) (*RateLimitReloader, error) {
	if store == nil {
		return nil, errors.New("rate limiter requires a store")
	}
	if defaultRate == "" {
		defaultRate = models.DefaultRatelimitRate
	}
	if _, err := limiter.NewRateFromFormatted(defaultRate); err != nil {
		return nil, err
	}
	r := &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
	r.load(context.Background())
	return r, nil
}

// Middleware applies the current limiter, keyed by user when authenticated
// and by client IP otherwise.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			mw := r.current
			r.mu.RUnlock()
			mw.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *RateLimitReloader) Start(ctx context.Context) {
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

// Rate returns the rate currently enforced.
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

func (r *RateLimitReloader) resolveRate(ctx context.Context) string {
	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		return r.defaultRate
	case cfg != nil && cfg.Rate != "":
		return cfg.Rate
	}

	if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
		r.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	}
	return r.defaultRate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.resolveRate(ctx)
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		rate, _ = limiter.NewRateFromFormatted(rateStr)
	}

	r.mu.RLock()
	unchanged := r.current != nil && r.rate == rateStr
	r.mu.RUnlock()
	if unchanged {
		return
	}

	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(request.RateLimitKey))

	r.mu.Lock()
	r.current = mw
	r.rate = rateStr
	r.mu.Unlock()

	r.log.Info("ratelimit_config_loaded", zap.String("rate", rateStr))
}

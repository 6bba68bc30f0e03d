package main

import (
	"net/http"

	"github.com/benvon/finance-dashboard/internal/handlers"
	"github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/middleware"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// routes is everything newRouter mounts.
type routes struct {
	logger     *zap.Logger
	tracing    bool
	enableHSTS bool

	health  *handlers.HealthChecker
	openAPI *handlers.OpenAPIHandler
	webhook *handlers.WebhookHandler

	cors func(http.Handler) http.Handler
	// auth and rateLimit are nil when session auth is not configured.
	auth      func(http.Handler) http.Handler
	rateLimit func(http.Handler) http.Handler
}

// newRouter assembles the route table and middleware chain served by main.
func newRouter(rt routes) *mux.Router {
	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, outermost first.
	if rt.tracing {
		r.Use(otelmux.Middleware(logger.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(rt.enableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(rt.logger))
	r.Use(middleware.Audit(rt.logger))
	r.Use(middleware.Logging(rt.logger))

	r.HandleFunc("/healthz", rt.health.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionInfo).Methods(http.MethodGet)
	rt.openAPI.RegisterRoutes(r)

	// Server-to-server at handlers.WebhookPath: no CORS, session, rate limit
	// or Content-Type gate. The handler owns the whole status contract.
	rt.webhook.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	if rt.cors != nil {
		apiRouter.Use(rt.cors)
	}
	apiRouter.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if rt.auth != nil {
		authRouter := apiRouter.PathPrefix("/auth").Subrouter()
		authRouter.Use(rt.auth)
		if rt.rateLimit != nil {
			authRouter.Use(rt.rateLimit)
		}
		handlers.NewAuthHandler().RegisterRoutes(authRouter)
	}

	return r
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/finance-dashboard/api/openapi"
	"github.com/benvon/finance-dashboard/internal/config"
	"github.com/benvon/finance-dashboard/internal/database"
	"github.com/benvon/finance-dashboard/internal/handlers"
	"github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/middleware"
	"github.com/benvon/finance-dashboard/internal/services/session"
	"github.com/benvon/finance-dashboard/internal/services/webhook"
	"github.com/benvon/finance-dashboard/internal/telemetry"
	"go.uber.org/zap"
)

const configReloadInterval = time.Minute

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode, handlers.Version)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("session_auth_enabled", cfg.SessionAuthEnabled()),
		zap.String("version", handlers.Version),
	)

	// Build the verifier before touching any dependency so a bad secret fails fast.
	verifier, err := webhook.NewSvixVerifier(cfg.ClerkWebhookSecret)
	if err != nil {
		zapLogger.Fatal("invalid_webhook_signing_secret", zap.Error(err))
	}

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), logger.ServiceName, handlers.Version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	if cfg.MigrateOnStart {
		applied, err := database.Migrate(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_apply_migrations", zap.Error(err))
		}
		zapLogger.Info("migrations_checked", zap.Bool("applied", applied))
	}

	db, err := database.New(cfg.DatabaseURL,
		database.WithMaxOpenConns(cfg.DBMaxOpenConns),
		database.WithMaxIdleConns(cfg.DBMaxIdleConns),
	)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	userRepo := database.NewUserRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	reconciler := webhook.NewReconciler(userRepo, zapLogger)
	webhookHandler, err := handlers.NewWebhookHandler(verifier, reconciler, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_webhook_handler", zap.Error(err))
	}
	healthChecker := handlers.NewHealthChecker(db, redisLimiter)
	openAPIHandler, err := handlers.NewOpenAPIHandler(openapi.Spec)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_spec", zap.Error(err))
	}

	limiterStore, err := redisLimiter.Store()
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitReloader, err := middleware.NewRateLimitReloader(limiterStore, ratelimitConfigRepo, "", zapLogger, configReloadInterval)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
	}
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, configReloadInterval)

	rt := routes{
		logger:     zapLogger,
		tracing:    tracingEnabled,
		enableHSTS: cfg.EnableHSTS,
		health:     healthChecker,
		openAPI:    openAPIHandler,
		webhook:    webhookHandler,
		cors:       corsReloader.Middleware(),
	}
	if cfg.SessionAuthEnabled() {
		jwksManager := session.NewJWKSManager(cfg.ClerkJWKSURL, nil)
		sessionVerifier := session.NewVerifier(jwksManager, cfg.ClerkIssuer)
		rt.auth = middleware.Auth(sessionVerifier, userRepo, zapLogger)
		rt.rateLimit = rateLimitReloader.Middleware()
	} else {
		zapLogger.Warn("session_auth_disabled",
			zap.Bool("issuer_set", cfg.ClerkIssuer != ""),
			zap.Bool("jwks_url_set", cfg.ClerkJWKSURL != ""),
		)
	}
	r := newRouter(rt)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	if cfg.SessionAuthEnabled() {
		go rateLimitReloader.Start(reloadCtx)
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

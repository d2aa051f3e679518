// Package main is the entrypoint for the notedesk API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/notedesk/notedesk/internal/activity"
	"github.com/notedesk/notedesk/internal/cache"
	"github.com/notedesk/notedesk/internal/config"
	"github.com/notedesk/notedesk/internal/handler"
	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/middleware"
	"github.com/notedesk/notedesk/internal/repository"
	"github.com/notedesk/notedesk/internal/server"
	"github.com/notedesk/notedesk/internal/service"
	"github.com/notedesk/notedesk/internal/tenancy"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		logger.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewPrometheus()
	resolver := tenancy.NewResolver(repo.TenantIDForDomain, cfg.CentralDomains)

	// Services
	tenantService := service.NewTenantService(repo, cfg.TenantBaseDomain, recorder)
	authService := service.NewAuthService(repo, repo, cacheClient, cfg.TokenTTL, logger, recorder)
	publisher := activity.NewPublisher(cacheClient.Client(), logger, recorder)
	noteService := service.NewNoteService(repo, publisher, recorder)

	// Handlers
	errs := handler.NewErrors(logger, !cfg.IsProduction())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		Logger:         logger,
		Resolver:       resolver,
		Metrics:        recorder,
		MetricsHandler: recorder.Handler(),
		Health:         handler.NewHealthHandler(repo, cacheClient),
		Central:        handler.NewCentralHandler(tenantService, errs, logger),
		Auth:           handler.NewAuthHandler(authService, errs, logger),
		Notes:          handler.NewNoteHandler(noteService, errs, logger),
		Authenticator:  authService,
		MinAuthFailure: middleware.DefaultMinAuthFailure,
		LoginRateLimit: middleware.RateLimitConfig{
			Logger:    logger,
			Limiter:   cacheClient,
			Metrics:   recorder,
			Enabled:   cfg.LoginRateLimitEnabled,
			PerMinute: cfg.LoginRatePerMinute,
			Burst:     cfg.LoginRateBurst,
		},
		TrustedProxies: trustedProxies,
		CORS:           corsCfg,
		Security:       middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxBodySize:    cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Components stop in reverse order: Redis first, then PostgreSQL.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"central_domains", cfg.CentralDomains,
		"tenant_base_domain", cfg.TenantBaseDomain,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL keeps the username of a connection URL and drops its password.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

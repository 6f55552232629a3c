package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/docudist/docudist/internal/app"
	"github.com/docudist/docudist/internal/auth"
	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/invoices"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/masterdata/adoctypes"
	"github.com/docudist/docudist/internal/masterdata/departments"
	"github.com/docudist/docudist/internal/masterdata/invoicetypes"
	"github.com/docudist/docudist/internal/masterdata/suppliers"
	"github.com/docudist/docudist/internal/observability"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/users"
	"github.com/docudist/docudist/internal/view"
	"github.com/docudist/docudist/jobs"
	"github.com/docudist/docudist/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	// Local development keeps secrets in .env; production injects real env vars.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "docudist_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	apiClient := backend.NewClient(cfg.APIBaseURL)

	lookupService := lookups.NewService(redisClient, cfg.LookupTTL, logger)
	suppliers.RegisterLookup(lookupService, apiClient)
	departments.RegisterLookup(lookupService, apiClient)
	invoicetypes.RegisterLookup(lookupService, apiClient)
	adoctypes.RegisterLookup(lookupService, apiClient)
	users.RegisterLookup(lookupService, apiClient)
	invoices.RegisterLookup(lookupService, apiClient)

	authService := auth.NewService(apiClient, logger)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)
	authzMiddleware := authz.Middleware{Refresher: authService, Logger: logger}

	invoiceHandler := invoices.NewHandler(logger, apiClient, templates, csrfManager, authzMiddleware, lookupService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, apiClient, templates, logger)
	if err := reportClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Backend:        apiClient,
		Lookups:        lookupService,
		Authz:          authzMiddleware,
		AuthHandler:    authHandler,
		InvoiceHandler: invoiceHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

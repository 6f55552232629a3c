package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/docudist/docudist/internal/app"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/invoices"
	jobmetrics "github.com/docudist/docudist/internal/jobs"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/masterdata/adoctypes"
	"github.com/docudist/docudist/internal/masterdata/departments"
	"github.com/docudist/docudist/internal/masterdata/invoicetypes"
	"github.com/docudist/docudist/internal/masterdata/suppliers"
	"github.com/docudist/docudist/internal/users"
	"github.com/docudist/docudist/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	apiClient := backend.NewClient(cfg.APIBaseURL)

	lookupService := lookups.NewService(redisClient, cfg.LookupTTL, logger)
	suppliers.RegisterLookup(lookupService, apiClient)
	departments.RegisterLookup(lookupService, apiClient)
	invoicetypes.RegisterLookup(lookupService, apiClient)
	adoctypes.RegisterLookup(lookupService, apiClient)
	users.RegisterLookup(lookupService, apiClient)
	invoices.RegisterLookup(lookupService, apiClient)

	if cfg.APIServiceToken == "" {
		logger.Warn("api service token not set, lookup warmup will be skipped by the backend")
	}

	metrics := jobmetrics.NewMetrics(nil)
	warmupJob := jobs.NewLookupWarmupJob(lookupService, cfg.APIServiceToken, logger, metrics)
	sweepJob := jobs.NewSessionSweepJob(redisClient, logger, metrics)

	warmupTask, err := jobs.NewLookupWarmupTask(jobs.LookupWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	sweepTask := jobs.NewSessionSweepTask()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLookupWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskSessionSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

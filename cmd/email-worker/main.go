package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/brimhq/growth-engine/internal/emails"
	"github.com/brimhq/growth-engine/internal/sched"
	"github.com/brimhq/growth-engine/pkg/config"
	"github.com/brimhq/growth-engine/pkg/db"
	"github.com/brimhq/growth-engine/pkg/logger"
	"github.com/brimhq/growth-engine/pkg/metrics"
	"github.com/brimhq/growth-engine/pkg/migrate"
	"github.com/brimhq/growth-engine/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "email-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "email-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	dispatcher, err := emails.NewDispatcher(emails.NewRepository(dbClient.DB()), dbClient, logg, cfg.Dispatch.BatchSize)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	dispatchJob, err := sched.NewEmailDispatchJob(sched.EmailDispatchJobParams{
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch job", err)
		os.Exit(1)
	}

	registry := sched.NewRegistry()
	registry.Register(dispatchJob)

	lockKey := redis.LockKey(fmt.Sprintf("email-worker:%s", cfg.App.Env))
	lock, err := sched.NewRedisLock(redisClient, lockKey, cfg.Dispatch.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	scheduler, err := sched.NewService(sched.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Dispatch.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Dispatch.Interval.String(),
	})
	logg.Info(ctx, "starting email worker")

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "email worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "email worker shutting down gracefully")
}

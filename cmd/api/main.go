package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brimhq/growth-engine/api/routes"
	"github.com/brimhq/growth-engine/internal/analytics"
	"github.com/brimhq/growth-engine/internal/emails"
	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/internal/leads"
	"github.com/brimhq/growth-engine/pkg/config"
	"github.com/brimhq/growth-engine/pkg/db"
	"github.com/brimhq/growth-engine/pkg/gemini"
	"github.com/brimhq/growth-engine/pkg/logger"
	"github.com/brimhq/growth-engine/pkg/migrate"
	"github.com/brimhq/growth-engine/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	eventsService, err := events.NewService(events.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	geminiClient, err := gemini.New(cfg.Gemini)
	if err != nil {
		logg.Error(context.Background(), "failed to create gemini client", err)
		os.Exit(1)
	}

	generator, err := emails.NewGenerator(geminiClient, emails.NewRepository(dbClient.DB()), dbClient, eventsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email generator", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := emails.NewPool(generator, logg, cfg.Generation.Workers, cfg.Generation.QueueSize)
	if err != nil {
		logg.Error(runCtx, "failed to create generation pool", err)
		os.Exit(1)
	}
	pool.Start(runCtx, cfg.Generation.Workers)
	defer pool.Stop()

	leadsService, err := leads.NewService(eventsService, pool, logg)
	if err != nil {
		logg.Error(runCtx, "failed to create leads service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()), logg, nil)
	if err != nil {
		logg.Error(runCtx, "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, leadsService, analyticsService),
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

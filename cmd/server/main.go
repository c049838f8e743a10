package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parentdesk/portal-auth/internal/api"
	"github.com/parentdesk/portal-auth/internal/core/service"
	"github.com/parentdesk/portal-auth/internal/infrastructure/config"
	mongodb "github.com/parentdesk/portal-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/parentdesk/portal-auth/internal/infrastructure/db/redis"
	"github.com/parentdesk/portal-auth/internal/infrastructure/queue"
	"github.com/parentdesk/portal-auth/pkg/logger"
)

func main() {
	log := logger.Init(logger.Options{Level: os.Getenv("LOG_LEVEL"), Pretty: os.Getenv("ENV") == "development"})
	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	auditor := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(mongodb.NewAuditRepository(db), log), log)
	auditor.Start(ctx)

	e := api.NewRouter(api.Deps{
		Mongo:           db,
		Redis:           rdb,
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		ProfileCacheTTL: cfg.ProfileCacheTTL,
		Auditor:         auditor,
		Log:             log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal-auth started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("portal-auth stopped cleanly")
}

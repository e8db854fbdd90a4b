package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/ai"
	"github.com/hongminglow/skillpath-be/internal/auth"
	"github.com/hongminglow/skillpath-be/internal/config"
	"github.com/hongminglow/skillpath-be/internal/middleware"
	"github.com/hongminglow/skillpath-be/internal/server"
	"github.com/hongminglow/skillpath-be/internal/storage"
	"github.com/hongminglow/skillpath-be/internal/storage/mongo"
	"github.com/hongminglow/skillpath-be/internal/storage/postgres"
	"github.com/hongminglow/skillpath-be/internal/storage/sqlite"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := server.Deps{Store: store}

	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		deps.AI = client
	} else {
		log.Warn("GEMINI_API_KEY not set; AI features disabled")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		deps.States = auth.NewRedisStateStore(rdb)
		deps.Limiter = middleware.NewRedisLimiter(rdb, cfg.AIRequestsPerMinute)
	} else {
		limiter := middleware.NewMemoryLimiter(cfg.AIRequestsPerMinute)
		defer limiter.Stop()
		deps.States = auth.NewMemoryStateStore()
		deps.Limiter = limiter
	}

	srv := server.New(cfg, deps, log)
	errCh := make(chan error, 1)
	go func() {
		log.Info("SkillPath backend listening",
			zap.String("addr", cfg.HTTPAddress()),
			zap.String("storage", cfg.StorageDriver),
			zap.Bool("ai", deps.AI != nil),
			zap.Bool("google_oauth", cfg.GoogleClientID != ""),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("graceful shutdown error", zap.Error(err))
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	store.Close()
	log.Info("schema is up to date", zap.String("storage", cfg.StorageDriver))
	return nil
}

// openStore connects to the configured backend. Opening a store applies its schema.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.StorageDriver {
	case config.DriverMongo:
		store, err = mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite:
		store, err = sqlite.NewStore(ctx, cfg.SQLitePath)
	default:
		store, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s store: %w", cfg.StorageDriver, err)
	}
	return store, nil
}

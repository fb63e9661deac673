// cmd/rating-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"review-rating-engine/internal/common/config"
	"review-rating-engine/internal/common/database"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/common/observability"
	"review-rating-engine/internal/engine/cache"
	"review-rating-engine/internal/engine/evaluation"
	"review-rating-engine/internal/engine/mistral"
	"review-rating-engine/internal/engine/rating"
	"review-rating-engine/internal/engine/sentiment"
	"review-rating-engine/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting rating server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("rating-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Analysis cache ---
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		store = cache.NewRedisStore(redis, log)
	default:
		store = cache.NewMemoryStore(cfg.Cache.MaxEntries)
		zapLog.Info("In-memory cache initialized",
			zap.Int("maxEntries", cfg.Cache.MaxEntries),
			zap.Int("ttl_s", cfg.Cache.TTL),
		)
	}

	// --- Wire the engine ---
	gateway := mistral.NewClient(mistral.LoadConfig(cfg), store, log)
	analyzer := sentiment.NewService(gateway, log)
	synthesizer := rating.NewSynthesizer(gateway, log)
	evaluator := evaluation.NewService(analyzer, synthesizer, gateway, obs, log)

	zapLog.Info("Rating engine initialized",
		zap.String("model", cfg.Mistral.Model),
		zap.String("cacheBackend", cfg.Cache.Backend),
	)

	// --- HTTP Server ---
	api := server.New(evaluator, analyzer, log, cfg.App.Version)

	mux := http.NewServeMux()
	mux.Handle("/", api.Handler())
	// pprof registers itself on the default mux via its blank import.
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Rating server stopped gracefully")
}

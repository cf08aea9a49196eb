// cmd/shopper-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopper-agents/internal/agents/pipeline"
	sellerreputation "shopper-agents/internal/agents/seller-reputation"
	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/database"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/llm"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/common/observability"
	"shopper-agents/internal/common/region"
	"shopper-agents/internal/providers"
	"shopper-agents/internal/server"
	"shopper-agents/internal/storage"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting shopper server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL (optional) with retry ---
	var searchLog *storage.SearchLog
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		searchLog = storage.NewSearchLog(pg.GetDB(), log)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis (optional) with retry ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch (optional) with retry ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Provider registry ---
	registry, err := providers.NewRegistry(cfg, providers.RegistryDeps{
		HTTPClient: &http.Client{Timeout: config.GetDuration(cfg.Discovery.BatchDeadline)},
		ES:         esClient,
		Cache:      redisClient,
		Logger:     log,
	})
	if err != nil {
		zapLog.Fatal("provider registry init failed", zap.Error(apperrors.NewPipelineInitError(err)))
	}
	zapLog.Info("Provider registry initialized", zap.Strings("regions", registry.Regions()))

	// --- Reputation table ---
	table := sellerreputation.DefaultTable()
	if path := cfg.Regions.ReputationPath; path != "" {
		table, err = sellerreputation.LoadTable(path)
		if err != nil {
			zapLog.Fatal("reputation table load failed", zap.Error(err), zap.String("path", path))
		}
	}

	// --- Pipeline + HTTP boundary ---
	pipe := pipeline.New(cfg, pipeline.Deps{
		Client:    llm.NewClient(cfg.Reasoning),
		Providers: registry,
		Table:     table,
		SearchLog: searchLog,
		Logger:    log,
	})

	resolver := region.NewResolver(cfg.Regions.Default, redisClient, log)
	srv := server.New(cfg.Server, pipe, resolver, log)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Aux Health & Metrics Server ---
	if addr := cfg.Server.MetricsAddress; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Shopper server stopped gracefully")
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/hibiken/asynq"
	"github.com/recipelens/basil/internal/api"
	"github.com/recipelens/basil/internal/cache"
	"github.com/recipelens/basil/internal/config"
	"github.com/recipelens/basil/internal/logger"
	"github.com/recipelens/basil/internal/mealdb"
	"github.com/recipelens/basil/internal/metrics"
	"github.com/recipelens/basil/internal/sentry"
	"github.com/recipelens/basil/internal/services/analysis"
	"github.com/recipelens/basil/internal/telemetry"
	"github.com/recipelens/basil/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	// Cache: Redis when configured, in-process otherwise
	var store cache.Cache
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
	} else {
		slog.Info("No Redis configured, using in-process cache")
		store = cache.NewMemory(cache.DefaultTTL, cache.DefaultSweepInterval)
	}
	defer store.Close()

	// Asynq client for enqueuing warming tasks (optional)
	var asynqClient *asynq.Client
	if cfg.RedisURL != "" {
		asynqClient = worker.NewClient(cfg.RedisURL)
		defer asynqClient.Close()
	}

	// Recipe gateway and analysis service
	meals := mealdb.NewClient(cfg.MealDBBaseURL)

	provider := analysis.NewChatProvider(cfg.Analysis, cfg.GroqKey, cfg.OpenAIKey)
	if provider == nil {
		slog.Warn("No AI credentials configured, analysis will serve defaults")
	}
	analyzer := analysis.NewService(provider, store)

	apiServer := api.NewServer(cfg, meals, analyzer, store, asynqClient)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)

	if err := http.ListenAndServe(":"+port, apiServer.Routes()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

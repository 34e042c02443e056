package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoangdinh2411/cook-ai-api/internal/cache"
	"github.com/hoangdinh2411/cook-ai-api/internal/config"
	"github.com/hoangdinh2411/cook-ai-api/internal/handlers"
	"github.com/hoangdinh2411/cook-ai-api/internal/httpserver"
	"github.com/hoangdinh2411/cook-ai-api/internal/metrics"
	"github.com/hoangdinh2411/cook-ai-api/internal/openai"
	"github.com/hoangdinh2411/cook-ai-api/pkg/logging/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("cookapi exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", zap.Error(err))
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("vision_model", cfg.VisionModel),
		zap.String("recipes_model", cfg.RecipesModel),
		zap.Duration("vision_cache_ttl", cfg.VisionCacheTTL),
		zap.Duration("recipes_cache_ttl", cfg.RecipeCacheTTL),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Cache store -----
	store := cache.NewStore(cache.Config{
		Backend: cfg.CacheBackend,
		Prefix:  cfg.CachePrefix,
	}, redisClient)

	var pinger httpserver.Pinger
	if p, ok := store.(httpserver.Pinger); ok {
		pinger = p
	}

	store = cache.NewLoggingStore(store)

	// ----- Generation client -----
	generator, err := openai.NewClient(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		VisionModel:     cfg.VisionModel,
		RecipesModel:    cfg.RecipesModel,
		UpstreamTimeout: cfg.UpstreamTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer generator.Close()

	// ----- Handlers -----
	ingredientsHandler := handlers.NewIngredientsHandler(store, generator, cfg.VisionCacheTTL, cfg.MaxImageBytes)
	recipesHandler := handlers.NewRecipesHandler(store, generator, cfg.RecipeCacheTTL)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, ingredientsHandler, recipesHandler, httpserver.Options{
		RequestTimeout: cfg.RequestTimeout,
		// Multipart uploads carry some overhead beyond the image itself.
		MaxBodyBytes: cfg.MaxImageBytes + 512*1024,
		CachePinger:  pinger,
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting cookapi",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

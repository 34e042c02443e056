package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hoangdinh2411/cook-ai-api/internal/handlers"
	"github.com/hoangdinh2411/cook-ai-api/internal/metrics"
	"github.com/hoangdinh2411/cook-ai-api/internal/middleware"
)

// Pinger is implemented by cache backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	// CachePinger feeds /healthz; nil means the backend has no ping.
	CachePinger Pinger
}

func SetupRouter(
	r *chi.Mux,
	baseLogger *zap.Logger,
	ingredientsHandler *handlers.IngredientsHandler,
	recipesHandler *handlers.RecipesHandler,
	opts Options,
) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 4 * 1024 * 1024
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.MaxBodySize(opts.MaxBodyBytes))

	// routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingredients", ingredientsHandler.Detect)
		r.Post("/recipes", recipesHandler.Generate)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if opts.CachePinger != nil {
			if err := opts.CachePinger.Ping(req.Context()); err != nil {
				baseLogger.Warn("healthz cache ping failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("cache unreachable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hoangdinh2411/cook-ai-api/internal/cache"
	"github.com/hoangdinh2411/cook-ai-api/internal/metrics"
	"github.com/hoangdinh2411/cook-ai-api/internal/openai"
	"github.com/hoangdinh2411/cook-ai-api/internal/recipes"
	"github.com/hoangdinh2411/cook-ai-api/pkg/logging/logging"

	"go.uber.org/zap"
)

// RecipesHandler holds dependencies for POST /v1/recipes.
type RecipesHandler struct {
	Cache     cache.Store
	Generator openai.Generator
	CacheTTL  time.Duration
}

func NewRecipesHandler(store cache.Store, generator openai.Generator, ttl time.Duration) *RecipesHandler {
	return &RecipesHandler{
		Cache:     store,
		Generator: generator,
		CacheTTL:  ttl,
	}
}

// Generate handles POST /v1/recipes. The filter is normalized before key
// derivation, so requests that differ only in case, whitespace or list order
// land on the same cache entry.
func (h *RecipesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var filter recipes.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, CategoryValidation, "invalid JSON body")
		return
	}

	if err := filter.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CategoryValidation, err.Error())
		return
	}

	normalized := recipes.Normalize(filter)
	key := cache.KeyForFilter(normalized)

	result, hit, err := cache.Result(ctx, h.Cache, "recipes", key, h.CacheTTL,
		func(ctx context.Context) (*recipes.RecipeSet, error) {
			genStart := time.Now()
			set, genErr := h.Generator.GenerateRecipes(ctx, normalized)
			metrics.GenerationLatencySeconds.WithLabelValues("recipes").Observe(time.Since(genStart).Seconds())
			return set, genErr
		})
	if err != nil {
		writeGenerationError(w, logger, err)
		return
	}

	logger.Info("cache_decision",
		zap.String("endpoint", "recipes"),
		zap.String("cache_key", key),
		zap.Bool("cache_hit", hit),
		zap.String("output_lang", normalized.OutputLang),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	writeJSON(w, result)
}

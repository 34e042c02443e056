package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hoangdinh2411/cook-ai-api/internal/cache"
	"github.com/hoangdinh2411/cook-ai-api/internal/metrics"
	"github.com/hoangdinh2411/cook-ai-api/internal/openai"
	"github.com/hoangdinh2411/cook-ai-api/pkg/logging/logging"

	"go.uber.org/zap"
)

// allowedImageTypes is the upload MIME allow-list.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// IngredientsHandler holds dependencies for POST /v1/ingredients.
type IngredientsHandler struct {
	Cache         cache.Store
	Generator     openai.Generator
	CacheTTL      time.Duration
	MaxImageBytes int64
}

func NewIngredientsHandler(store cache.Store, generator openai.Generator, ttl time.Duration, maxImageBytes int64) *IngredientsHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 2 * 1024 * 1024
	}
	return &IngredientsHandler{
		Cache:         store,
		Generator:     generator,
		CacheTTL:      ttl,
		MaxImageBytes: maxImageBytes,
	}
}

// Detect handles POST /v1/ingredients: a multipart upload with a single
// "file" field. The cache key is the digest of the image bytes, so the same
// photo uploaded under a different declared type is still a hit.
func (h *IngredientsHandler) Detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	if err := r.ParseMultipartForm(h.MaxImageBytes + 64*1024); err != nil {
		logger.Warn("invalid multipart request", zap.Error(err))
		writeError(w, http.StatusBadRequest, CategoryValidation, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, CategoryValidation, "file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedImageTypes[mimeType] {
		writeError(w, http.StatusUnprocessableEntity, CategoryValidation,
			"invalid file type, only JPEG and PNG files are allowed")
		return
	}

	// Read one byte past the limit so oversized files are detected without
	// buffering the whole thing.
	image, err := io.ReadAll(io.LimitReader(file, h.MaxImageBytes+1))
	if err != nil {
		logger.Warn("read upload failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, CategoryValidation, "could not read file")
		return
	}
	if int64(len(image)) > h.MaxImageBytes {
		writeError(w, http.StatusUnprocessableEntity, CategoryValidation, "file size is too large")
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, CategoryValidation, "file is empty")
		return
	}

	key := cache.KeyForImage(image)

	ingredients, hit, err := cache.Result(ctx, h.Cache, "ingredients", key, h.CacheTTL,
		func(ctx context.Context) ([]string, error) {
			genStart := time.Now()
			names, genErr := h.Generator.ExtractIngredients(ctx, image, mimeType)
			metrics.GenerationLatencySeconds.WithLabelValues("ingredients").Observe(time.Since(genStart).Seconds())
			return names, genErr
		})
	if err != nil {
		writeGenerationError(w, logger, err)
		return
	}

	logger.Info("cache_decision",
		zap.String("endpoint", "ingredients"),
		zap.String("cache_key", key),
		zap.Bool("cache_hit", hit),
		zap.Int("ingredient_count", len(ingredients)),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	writeJSON(w, ingredients)
}

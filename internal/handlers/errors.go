package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoangdinh2411/cook-ai-api/internal/openai"

	"go.uber.org/zap"
)

// Stable machine-readable error categories. Cache-layer trouble never shows
// up here; callers only ever see validation and generation failures.
const (
	CategoryValidation  = "validation_error"
	CategoryGeneration  = "generation_error"
	CategoryRateLimited = "rate_limited"
	CategoryTimeout     = "timeout"
	CategoryInternal    = "internal"
)

type errorBody struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Category: category, Message: message},
	})
}

// writeGenerationError maps a failed model call to a response. The kind
// decides the status so clients can tell rate limiting and timeouts apart
// from a broken upstream.
func writeGenerationError(w http.ResponseWriter, logger *zap.Logger, err error) {
	genErr, ok := openai.AsGenerationError(err)
	if !ok {
		logger.Error("generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CategoryInternal, "internal error")
		return
	}

	logger.Error("generation failed",
		zap.String("kind", string(genErr.Kind)),
		zap.Int("upstream_status", genErr.Status),
		zap.Error(err),
	)

	switch genErr.Kind {
	case openai.KindRateLimited:
		writeError(w, http.StatusTooManyRequests, CategoryRateLimited, "model is rate limited, try again later")
	case openai.KindTimeout:
		writeError(w, http.StatusGatewayTimeout, CategoryTimeout, "model call timed out")
	default:
		writeError(w, http.StatusBadGateway, CategoryGeneration, "model call failed")
	}
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

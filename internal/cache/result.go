package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hoangdinh2411/cook-ai-api/internal/metrics"
	"github.com/hoangdinh2411/cook-ai-api/pkg/logging/logging"

	"go.uber.org/zap"
)

// Result runs the cached-result flow for one request:
//
//	get -> on hit decode and return
//	    -> on corrupt entry: purge the key and fall through to a miss
//	    -> on miss: generate, store best-effort, return
//
// The cache is best-effort throughout. Store read errors are logged and
// treated as a miss, store write errors are logged and the generated value
// is still returned. A generate error is the only error the caller sees,
// and nothing is written in that case (no negative caching). The bool
// reports whether the value came from the cache.
//
// Concurrent misses on the same key each generate independently; the last
// write wins. Regenerated values for the same key are equivalent but not
// byte-identical, so callers must not depend on value stability.
func Result[T any](
	ctx context.Context,
	store Store,
	endpoint string,
	key string,
	ttl time.Duration,
	generate func(context.Context) (T, error),
) (T, bool, error) {
	var zero T
	logger := logging.L(ctx)

	raw, hit, err := store.Get(ctx, key)
	if err != nil {
		// Degraded mode: a broken backend costs a generation, not the request.
		logger.Warn("cache_get_error",
			zap.String("endpoint", endpoint),
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}

	if hit {
		var cached T
		if err := json.Unmarshal(raw, &cached); err != nil {
			// Corrupt entry: purge so the key cannot stay poisoned, then
			// treat as a cold miss. The caller never sees the decode error.
			logger.Warn("cache_decode_error",
				zap.String("endpoint", endpoint),
				zap.String("cache_key", key),
				zap.Error(err),
			)
			if delErr := store.Delete(ctx, key); delErr != nil {
				logger.Warn("cache_purge_error",
					zap.String("endpoint", endpoint),
					zap.String("cache_key", key),
					zap.Error(delErr),
				)
			}
		} else {
			metrics.CacheHitsTotal.WithLabelValues(endpoint).Inc()
			return cached, true, nil
		}
	}

	metrics.CacheMissesTotal.WithLabelValues(endpoint).Inc()

	generated, err := generate(ctx)
	if err != nil {
		return zero, false, err
	}

	encoded, err := json.Marshal(generated)
	if err != nil {
		logger.Warn("cache_encode_error",
			zap.String("endpoint", endpoint),
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return generated, false, nil
	}

	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		// Losing the caching opportunity is fine, losing the response is not.
		logger.Warn("cache_set_error",
			zap.String("endpoint", endpoint),
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}

	return generated, false, nil
}

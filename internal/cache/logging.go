package cache

import (
	"context"
	"time"

	"github.com/hoangdinh2411/cook-ai-api/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with per-operation logging.
type LoggingStore struct {
	inner Store
}

// NewLoggingStore returns a store that logs every operation with its latency.
func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("cache_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Int("value_bytes", len(value)),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Info("cache_set", fields...)
	}

	return err
}

func (s *LoggingStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("cache_delete", append(fields, zap.Error(err))...)
	} else {
		logger.Info("cache_delete", fields...)
	}

	return err
}

func loggerFromContext(ctx context.Context) *zap.Logger {
	if l := logging.FromContext(ctx); l != nil {
		return l
	}
	return logging.L(ctx)
}

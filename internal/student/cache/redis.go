package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"unemigw/internal/student/models"
)

var cacheGetDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "unemigw_cache_get_duration_ms",
	Help:    "Latency of student cache reads in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// RedisStore is the production implementation; entries are JSON-encoded so
// every gateway instance shares the same cache.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (models.Result, error) {
	start := time.Now()
	defer func() {
		cacheGetDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Result{}, ErrNotFound
	}
	if err != nil {
		return models.Result{}, fmt.Errorf("cache get %s: %w", key, err)
	}

	var result models.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.Result{}, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return result, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, result models.Result, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

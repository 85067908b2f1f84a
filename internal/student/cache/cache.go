// Package cache stores assembled student results keyed by document number and
// visibility selection. The cache is interface-driven so deployments without
// Redis fall back to an in-process store without rewiring the service.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unemigw/internal/student/models"
)

// ErrNotFound keeps cache misses consistent across the in-memory and Redis
// implementations.
var ErrNotFound = errors.New("cache: entry not found")

// Store persists assembled results with a per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) (models.Result, error)
	Set(ctx context.Context, key string, result models.Result, ttl time.Duration) error
}

// Key derives the cache key for a lookup. The visibility flags are part of the
// key so public-only and full responses never shadow each other.
func Key(documento string, public, private bool) string {
	return fmt.Sprintf("student:full:%s:%t:%t", documento, public, private)
}

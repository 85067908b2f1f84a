package cache

import (
	"context"
	"sync"
	"time"

	"unemigw/internal/student/models"
)

// InMemoryStore keeps entries in a map with lazy expiry. It is the fallback
// when no Redis URL is configured; it intentionally favors clarity over
// performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    models.Result
	expiresAt time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (models.Result, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return models.Result{}, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return models.Result{}, ErrNotFound
	}
	return entry.result, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, result models.Result, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{result: result, expiresAt: time.Now().Add(ttl)}
	return nil
}

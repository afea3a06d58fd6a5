// Package memory holds process-local implementations of the repositories,
// used for single-instance deployments and in tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// Storage keeps rate limit records in a map. Records are never expired
// proactively; a stale one is replaced by the next request for its key.
type Storage struct {
	mu      sync.RWMutex
	records map[string]entity.RateLimitRecord
}

func NewStorage() *Storage {
	return &Storage{records: make(map[string]entity.RateLimitRecord)}
}

// Get returns a copy so callers cannot mutate stored state without Set
func (s *Storage) Get(_ context.Context, key entity.LimiterKey) (*entity.RateLimitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key.String()]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *Storage) Set(_ context.Context, key entity.LimiterKey, record *entity.RateLimitRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key.String()] = *record
	return nil
}

func (s *Storage) Delete(_ context.Context, key entity.LimiterKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key.String())
	return nil
}

func (s *Storage) Clear(_ context.Context, scope entity.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := entity.ScopePrefix(scope)
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			delete(s.records, k)
		}
	}
	return nil
}

// Len returns the number of stored records across all scopes
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Storage) Close() error {
	return nil
}

package check_rate_limit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// RateLimitExceededMessage is the standardized message returned when rate limit is exceeded
const RateLimitExceededMessage = "Too many requests. Please try again later."

// UseCase implements a fixed-window limiter for one scope. The window opens at
// the first request for a key and resets hard once it has passed.
type UseCase struct {
	scope   entity.Scope
	storage repository.Storage
	now     func() time.Time

	// mu serialises read-check-write so a key is rejected at exactly MaxRequests
	mu     sync.Mutex
	config entity.RateLimitConfig
}

// Option configures a UseCase
type Option func(*UseCase)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// NewUseCase creates a new instance using dependency injection
func NewUseCase(scope entity.Scope, storage repository.Storage, config entity.RateLimitConfig, opts ...Option) (*UseCase, error) {
	if scope == "" {
		return nil, errors.New("rate limiter scope is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s rate limit config: %w", scope, err)
	}

	uc := &UseCase{
		scope:   scope,
		storage: storage,
		now:     time.Now,
		config:  config,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// Scope returns the endpoint class this limiter protects
func (uc *UseCase) Scope() entity.Scope {
	return uc.scope
}

// Execute admits or rejects one request.
//
// The execution flow:
// 1. Unidentified callers are always allowed
// 2. A missing or expired record opens a new window holding this request
// 3. An exhausted window rejects without counting the request
// 4. Otherwise the request is counted and admitted
func (uc *UseCase) Execute(ctx context.Context, input Input) (*Output, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	config := uc.config
	if !input.Identified() {
		return &Output{Allowed: true, Limit: config.MaxRequests}, nil
	}

	key := entity.NewLimiterKey(uc.scope, input.identifier())
	now := uc.now()

	record, err := uc.storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit record for %s: %w", key, err)
	}

	if record == nil || record.Expired(now) {
		record = entity.NewRateLimitRecord(now, config.Window)
		if err := uc.storage.Set(ctx, key, record, config.Window); err != nil {
			return nil, fmt.Errorf("failed to open rate limit window for %s: %w", key, err)
		}
		return uc.createAllowedOutput(record, config), nil
	}

	if record.Exhausted(config.MaxRequests) {
		return uc.createRateLimitExceededOutput(record, config, now), nil
	}

	record.Count++
	if err := uc.storage.Set(ctx, key, record, ttlUntil(record.ResetAt, now)); err != nil {
		return nil, fmt.Errorf("failed to update rate limit record for %s: %w", key, err)
	}
	return uc.createAllowedOutput(record, config), nil
}

// Reset forgets every request seen from identifier
func (uc *UseCase) Reset(ctx context.Context, identifier string) error {
	input := Input{Identifier: identifier}
	if !input.Identified() {
		return nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.storage.Delete(ctx, entity.NewLimiterKey(uc.scope, input.identifier()))
}

// ClearAll forgets every key of this scope
func (uc *UseCase) ClearAll(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.storage.Clear(ctx, uc.scope)
}

// GetState returns the stored record for identifier without touching it.
// Nil when nothing is stored.
func (uc *UseCase) GetState(ctx context.Context, identifier string) (*entity.RateLimitRecord, error) {
	input := Input{Identifier: identifier}
	if !input.Identified() {
		return nil, nil
	}
	return uc.storage.Get(ctx, entity.NewLimiterKey(uc.scope, input.identifier()))
}

// UpdateConfig merges patch into the active config. Records already stored keep
// their ResetAt; only new windows see a changed Window.
func (uc *UseCase) UpdateConfig(patch entity.RateLimitConfigPatch) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	merged, err := uc.config.Merge(patch)
	if err != nil {
		return err
	}
	uc.config = merged
	return nil
}

// GetConfig returns a snapshot of the active config
func (uc *UseCase) GetConfig() entity.RateLimitConfig {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.config
}

// createAllowedOutput creates an output response when the request is allowed
func (uc *UseCase) createAllowedOutput(record *entity.RateLimitRecord, config entity.RateLimitConfig) *Output {
	remaining := record.Remaining(config.MaxRequests)
	return &Output{
		Allowed:   true,
		Remaining: &remaining,
		ResetAt:   record.ResetAt,
		Limit:     config.MaxRequests,
	}
}

// createRateLimitExceededOutput creates an output response when the window is exhausted
func (uc *UseCase) createRateLimitExceededOutput(record *entity.RateLimitRecord, config entity.RateLimitConfig, now time.Time) *Output {
	remaining := 0
	return &Output{
		Allowed:    false,
		Remaining:  &remaining,
		RetryAfter: record.RetryAfter(now),
		ResetAt:    record.ResetAt,
		Limit:      config.MaxRequests,
		Message:    RateLimitExceededMessage,
	}
}

// ttlUntil never returns less than a millisecond so stores with native expiry
// do not drop the key at the window boundary
func ttlUntil(resetAt, now time.Time) time.Duration {
	if ttl := resetAt.Sub(now); ttl > time.Millisecond {
		return ttl
	}
	return time.Millisecond
}

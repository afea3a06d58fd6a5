package repository

import (
	"context"
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// Storage defines the contract for rate limit state following Dependency Inversion Principle.
// The admission algorithm lives in the use case and stays identical whichever
// implementation (process memory, Redis) is plugged in.
type Storage interface {
	// Get returns the record stored for key, or nil with no error when there is none.
	Get(ctx context.Context, key entity.LimiterKey) (*entity.RateLimitRecord, error)

	// Set replaces the record stored for key.
	// ttl is a hint for stores that expire entries on their own; in-process stores
	// may keep the record until it is overwritten.
	Set(ctx context.Context, key entity.LimiterKey, record *entity.RateLimitRecord, ttl time.Duration) error

	// Delete removes the record for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key entity.LimiterKey) error

	// Clear removes every record belonging to scope.
	Clear(ctx context.Context, scope entity.Scope) error

	// Close releases connections held by the implementation.
	Close() error
}

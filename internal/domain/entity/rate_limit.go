package entity

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidMaxRequests = errors.New("max requests must be positive")
	ErrInvalidWindow      = errors.New("window must be positive")
)

// RateLimitConfig is the admission policy of one limiter instance
type RateLimitConfig struct {
	MaxRequests int           // Requests admitted per window
	Window      time.Duration // Window length, fixed at the first request of the window
}

// Validate checks both fields are positive
func (c RateLimitConfig) Validate() error {
	if c.MaxRequests <= 0 {
		return ErrInvalidMaxRequests
	}
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

// RateLimitConfigPatch is a partial update. Nil fields keep their current value.
type RateLimitConfigPatch struct {
	MaxRequests *int
	Window      *time.Duration
}

// Merge applies the patch on top of the config and returns the result.
// The receiver is not modified.
func (c RateLimitConfig) Merge(patch RateLimitConfigPatch) (RateLimitConfig, error) {
	merged := c
	if patch.MaxRequests != nil {
		merged.MaxRequests = *patch.MaxRequests
	}
	if patch.Window != nil {
		merged.Window = *patch.Window
	}
	if err := merged.Validate(); err != nil {
		return c, err
	}
	return merged, nil
}

// RateLimitRecord is the per-key state of the current window.
// ResetAt is always windowStart + window for the window the record represents.
type RateLimitRecord struct {
	Count   int       // Admitted requests in the current window, >= 1
	ResetAt time.Time // End of the current window
}

// NewRateLimitRecord opens a window at now holding the request that opened it
func NewRateLimitRecord(now time.Time, window time.Duration) *RateLimitRecord {
	return &RateLimitRecord{
		Count:   1,
		ResetAt: now.Add(window),
	}
}

// Expired reports whether now is strictly past the end of the window.
// A request landing exactly on ResetAt still belongs to the old window.
func (r *RateLimitRecord) Expired(now time.Time) bool {
	return now.After(r.ResetAt)
}

// Exhausted reports whether the window has no admissions left
func (r *RateLimitRecord) Exhausted(maxRequests int) bool {
	return r.Count >= maxRequests
}

// Remaining returns how many admissions are left in the window, never negative
func (r *RateLimitRecord) Remaining(maxRequests int) int {
	if left := maxRequests - r.Count; left > 0 {
		return left
	}
	return 0
}

// RetryAfter returns the whole seconds until the window ends, rounded up.
// The value is advisory and never below one second.
func (r *RateLimitRecord) RetryAfter(now time.Time) int {
	seconds := int(math.Ceil(float64(r.ResetAt.Sub(now).Milliseconds()) / 1000))
	if seconds < 1 {
		return 1
	}
	return seconds
}

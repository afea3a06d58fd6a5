package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitRecord_OpensWindowWithOneRequest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := NewRateLimitRecord(now, time.Minute)

	assert.Equal(t, 1, record.Count)
	assert.Equal(t, now.Add(time.Minute), record.ResetAt)
}

func TestExpired_OnlyStrictlyAfterResetAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &RateLimitRecord{Count: 3, ResetAt: now}

	assert.False(t, record.Expired(now.Add(-time.Millisecond)))
	assert.False(t, record.Expired(now))
	assert.True(t, record.Expired(now.Add(time.Millisecond)))
}

func TestExhausted_AtMaxRequests(t *testing.T) {
	record := &RateLimitRecord{Count: 5}

	assert.True(t, record.Exhausted(5))
	assert.False(t, record.Exhausted(6))
}

func TestRemaining_NeverNegative(t *testing.T) {
	record := &RateLimitRecord{Count: 7}

	assert.Equal(t, 0, record.Remaining(5))
	assert.Equal(t, 3, record.Remaining(10))
}

func TestRetryAfter_RoundsUpToWholeSeconds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		until time.Duration
		want  int
	}{
		{"exact seconds", 30 * time.Second, 30},
		{"partial second rounds up", 1500 * time.Millisecond, 2},
		{"just under a second", 10 * time.Millisecond, 1},
		{"window already closing", 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := &RateLimitRecord{Count: 5, ResetAt: now.Add(tc.until)}
			assert.Equal(t, tc.want, record.RetryAfter(now))
		})
	}
}

func TestConfigValidate_RejectsNonPositive(t *testing.T) {
	assert.NoError(t, RateLimitConfig{MaxRequests: 5, Window: time.Minute}.Validate())
	assert.ErrorIs(t, RateLimitConfig{MaxRequests: 0, Window: time.Minute}.Validate(), ErrInvalidMaxRequests)
	assert.ErrorIs(t, RateLimitConfig{MaxRequests: 5, Window: 0}.Validate(), ErrInvalidWindow)
}

func TestConfigMerge_ShallowMerge(t *testing.T) {
	base := RateLimitConfig{MaxRequests: 5, Window: time.Minute}
	limit := 10

	merged, err := base.Merge(RateLimitConfigPatch{MaxRequests: &limit})

	require.NoError(t, err)
	assert.Equal(t, 10, merged.MaxRequests)
	assert.Equal(t, time.Minute, merged.Window)
	assert.Equal(t, 5, base.MaxRequests) // receiver untouched
}

func TestConfigMerge_InvalidPatchKeepsOriginal(t *testing.T) {
	base := RateLimitConfig{MaxRequests: 5, Window: time.Minute}
	window := -time.Second

	merged, err := base.Merge(RateLimitConfigPatch{Window: &window})

	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.Equal(t, base, merged)
}

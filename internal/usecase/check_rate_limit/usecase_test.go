package check_rate_limit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mechinsul/leadform/internal/adapter/storage/memory"
	"github.com/mechinsul/leadform/internal/domain/entity"
)

// fakeClock is advanced by hand so window arithmetic is deterministic
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryUseCase(t *testing.T, max int, window time.Duration) (*UseCase, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	uc, err := NewUseCase(entity.ScopeContact, memory.NewStorage(),
		entity.RateLimitConfig{MaxRequests: max, Window: window}, WithClock(clock.Now))
	require.NoError(t, err)
	return uc, clock
}

func TestNewUseCase_InvalidConfig_ReturnsError(t *testing.T) {
	_, err := NewUseCase(entity.ScopeQuote, memory.NewStorage(), entity.RateLimitConfig{MaxRequests: 0, Window: time.Minute})

	assert.ErrorIs(t, err, entity.ErrInvalidMaxRequests)
	assert.Contains(t, err.Error(), "quote")
}

func TestNewUseCase_MissingScope_ReturnsError(t *testing.T) {
	_, err := NewUseCase("", memory.NewStorage(), ContactPolicy())

	assert.Error(t, err)
}

func TestExecute_FirstNAllowedThenRejected(t *testing.T) {
	for _, max := range []int{1, 3, 5} {
		// Arrange
		uc, _ := newMemoryUseCase(t, max, time.Minute)
		ctx := context.Background()

		// Act + Assert
		for i := 1; i <= max; i++ {
			output, err := uc.Execute(ctx, Input{Identifier: "203.0.113.7"})
			require.NoError(t, err)
			assert.True(t, output.Allowed)
			require.NotNil(t, output.Remaining)
			assert.Equal(t, max-i, *output.Remaining)
			assert.Zero(t, output.RetryAfter)
		}

		output, err := uc.Execute(ctx, Input{Identifier: "203.0.113.7"})
		require.NoError(t, err)
		assert.False(t, output.Allowed)
		assert.Equal(t, 0, *output.Remaining)
		assert.Equal(t, 60, output.RetryAfter)
		assert.Equal(t, RateLimitExceededMessage, output.Message)
	}
}

func TestExecute_RejectionDoesNotIncrement(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.Execute(ctx, Input{Identifier: "a"})
		require.NoError(t, err)
	}

	state, err := uc.GetState(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, state.Count)
}

func TestExecute_RetryAfterCountsDown(t *testing.T) {
	uc, clock := newMemoryUseCase(t, 1, time.Minute)
	ctx := context.Background()

	_, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)

	clock.Advance(59500 * time.Millisecond)
	output, err := uc.Execute(ctx, Input{Identifier: "a"})

	require.NoError(t, err)
	assert.False(t, output.Allowed)
	assert.Equal(t, 1, output.RetryAfter)
}

func TestExecute_WindowExpiryResets(t *testing.T) {
	// Arrange
	uc, clock := newMemoryUseCase(t, 2, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := uc.Execute(ctx, Input{Identifier: "a"})
		require.NoError(t, err)
	}

	// Act: exactly at resetAt the old window still applies
	clock.Advance(time.Minute)
	atBoundary, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)

	clock.Advance(time.Millisecond)
	afterBoundary, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)

	// Assert
	assert.False(t, atBoundary.Allowed)
	assert.True(t, afterBoundary.Allowed)
	assert.Equal(t, 1, *afterBoundary.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), afterBoundary.ResetAt)
}

func TestExecute_UnidentifiedAlwaysAllowed(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 1, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		output, err := uc.Execute(ctx, Input{})
		require.NoError(t, err)
		assert.True(t, output.Allowed)
		assert.Nil(t, output.Remaining)
	}
}

func TestExecute_KeysAreIsolated(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 1, time.Minute)
	ctx := context.Background()

	_, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)
	blocked, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)
	other, err := uc.Execute(ctx, Input{Identifier: "b"})
	require.NoError(t, err)

	assert.False(t, blocked.Allowed)
	assert.True(t, other.Allowed)
}

func TestExecute_ScopesShareStorageWithoutSharingState(t *testing.T) {
	storage := memory.NewStorage()
	contact, err := NewUseCase(entity.ScopeContact, storage, entity.RateLimitConfig{MaxRequests: 1, Window: time.Minute})
	require.NoError(t, err)
	quote, err := NewUseCase(entity.ScopeQuote, storage, QuotePolicy())
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = contact.Execute(ctx, Input{Identifier: "a"})
	exhausted, _ := contact.Execute(ctx, Input{Identifier: "a"})
	output, err := quote.Execute(ctx, Input{Identifier: "a"})

	require.NoError(t, err)
	assert.False(t, exhausted.Allowed)
	assert.True(t, output.Allowed)
	assert.Equal(t, 4, *output.Remaining)
}

func TestReset_BehavesAsFreshKey(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 1, time.Minute)
	ctx := context.Background()
	_, _ = uc.Execute(ctx, Input{Identifier: "a"})

	require.NoError(t, uc.Reset(ctx, "a"))
	output, err := uc.Execute(ctx, Input{Identifier: "a"})

	require.NoError(t, err)
	assert.True(t, output.Allowed)
	assert.Equal(t, 0, *output.Remaining)
}

func TestClearAll_OnlyClearsOwnScope(t *testing.T) {
	storage := memory.NewStorage()
	contact, _ := NewUseCase(entity.ScopeContact, storage, ContactPolicy())
	quote, _ := NewUseCase(entity.ScopeQuote, storage, QuotePolicy())
	ctx := context.Background()
	_, _ = contact.Execute(ctx, Input{Identifier: "a"})
	_, _ = contact.Execute(ctx, Input{Identifier: "b"})
	_, _ = quote.Execute(ctx, Input{Identifier: "a"})

	require.NoError(t, contact.ClearAll(ctx))

	assert.Equal(t, 1, storage.Len())
	state, err := quote.GetState(ctx, "a")
	require.NoError(t, err)
	assert.NotNil(t, state)
}

func TestGetState_NoSideEffect(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 5, time.Minute)
	ctx := context.Background()

	state, err := uc.GetState(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, state)

	_, _ = uc.Execute(ctx, Input{Identifier: "a"})
	state, _ = uc.GetState(ctx, "a")
	state.Count = 100
	again, _ := uc.GetState(ctx, "a")

	assert.Equal(t, 1, again.Count)
}

func TestUpdateConfig_NotRetroactive(t *testing.T) {
	// Arrange
	uc, clock := newMemoryUseCase(t, 2, time.Minute)
	ctx := context.Background()
	first, _ := uc.Execute(ctx, Input{Identifier: "a"})

	// Act
	window := time.Hour
	limit := 3
	require.NoError(t, uc.UpdateConfig(entity.RateLimitConfigPatch{MaxRequests: &limit, Window: &window}))
	second, err := uc.Execute(ctx, Input{Identifier: "a"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.ResetAt, second.ResetAt)
	assert.Equal(t, 1, *second.Remaining)
	assert.Equal(t, entity.RateLimitConfig{MaxRequests: 3, Window: time.Hour}, uc.GetConfig())

	clock.Advance(time.Minute + time.Millisecond)
	third, _ := uc.Execute(ctx, Input{Identifier: "a"})
	assert.Equal(t, clock.Now().Add(time.Hour), third.ResetAt)
}

func TestUpdateConfig_InvalidPatchKeepsConfig(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 2, time.Minute)
	zero := 0

	err := uc.UpdateConfig(entity.RateLimitConfigPatch{MaxRequests: &zero})

	assert.ErrorIs(t, err, entity.ErrInvalidMaxRequests)
	assert.Equal(t, 2, uc.GetConfig().MaxRequests)
}

func TestExecute_ConcurrentRequestsRejectAtExactlyMax(t *testing.T) {
	uc, _ := newMemoryUseCase(t, 5, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			output, err := uc.Execute(ctx, Input{Identifier: "a"})
			if err == nil && output.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}

func TestExecute_StorageGetError_ReturnsError(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	uc, err := NewUseCase(entity.ScopeContact, mockStorage, ContactPolicy())
	require.NoError(t, err)
	mockStorage.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	// Act
	output, err := uc.Execute(context.Background(), Input{Identifier: "a"})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, output)
	assert.Contains(t, err.Error(), "connection refused")
	mockStorage.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_StorageSetError_ReturnsError(t *testing.T) {
	mockStorage := new(MockStorage)
	uc, err := NewUseCase(entity.ScopeContact, mockStorage, ContactPolicy())
	require.NoError(t, err)
	mockStorage.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockStorage.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(errors.New("read only replica"))

	output, err := uc.Execute(context.Background(), Input{Identifier: "a"})

	assert.Error(t, err)
	assert.Nil(t, output)
	mockStorage.AssertExpectations(t)
}

func TestExecute_IncrementPassesRemainingWindowAsTTL(t *testing.T) {
	clock := newFakeClock()
	mockStorage := new(MockStorage)
	uc, err := NewUseCase(entity.ScopeContact, mockStorage, ContactPolicy(), WithClock(clock.Now))
	require.NoError(t, err)

	existing := &entity.RateLimitRecord{Count: 2, ResetAt: clock.Now().Add(20 * time.Second)}
	mockStorage.On("Get", mock.Anything, entity.NewLimiterKey(entity.ScopeContact, "a")).Return(existing, nil)
	mockStorage.On("Set", mock.Anything, mock.Anything, mock.MatchedBy(func(r *entity.RateLimitRecord) bool {
		return r.Count == 3
	}), 20*time.Second).Return(nil)

	output, err := uc.Execute(context.Background(), Input{Identifier: "a"})

	require.NoError(t, err)
	assert.Equal(t, 2, *output.Remaining)
	mockStorage.AssertExpectations(t)
}

func TestPolicies(t *testing.T) {
	assert.Equal(t, entity.RateLimitConfig{MaxRequests: 5, Window: 60 * time.Second}, ContactPolicy())
	assert.Equal(t, entity.RateLimitConfig{MaxRequests: 5, Window: 900 * time.Second}, QuotePolicy())

	policy, ok := PolicyFor(entity.ScopeQuote)
	assert.True(t, ok)
	assert.Equal(t, QuotePolicy(), policy)

	_, ok = PolicyFor("newsletter")
	assert.False(t, ok)
}

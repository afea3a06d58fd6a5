package check_rate_limit

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// MockStorage is a mock implementation of the Storage interface for testing purposes
type MockStorage struct {
	mock.Mock
}

// Get mocks the Get method from Storage interface
func (m *MockStorage) Get(ctx context.Context, key entity.LimiterKey) (*entity.RateLimitRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateLimitRecord), args.Error(1)
}

// Set mocks the Set method from Storage interface
func (m *MockStorage) Set(ctx context.Context, key entity.LimiterKey, record *entity.RateLimitRecord, ttl time.Duration) error {
	args := m.Called(ctx, key, record, ttl)
	return args.Error(0)
}

// Delete mocks the Delete method from Storage interface
func (m *MockStorage) Delete(ctx context.Context, key entity.LimiterKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Clear mocks the Clear method from Storage interface
func (m *MockStorage) Clear(ctx context.Context, scope entity.Scope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

// Close mocks the Close method from Storage interface
func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

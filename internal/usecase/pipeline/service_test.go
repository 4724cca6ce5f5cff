package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// MockItemCollector is a mock implementation of ItemCollector for testing
type MockItemCollector struct {
	mock.Mock
}

func (m *MockItemCollector) CollectCategory(ctx context.Context, opts domain.CollectOptions) ([]domain.MarketItem, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MarketItem), args.Error(1)
}

// MockPersistencePolicy is a mock implementation of PersistencePolicy for testing
type MockPersistencePolicy struct {
	mock.Mock
}

func (m *MockPersistencePolicy) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPersistencePolicy) Apply(ctx context.Context, items []domain.MarketItem, categoryCode int, asOf time.Time) (*domain.ApplyReport, error) {
	args := m.Called(ctx, items, categoryCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplyReport), args.Error(1)
}

func (m *MockPersistencePolicy) CatalogTable() string {
	args := m.Called()
	return args.String(0)
}

func testItems() []domain.MarketItem {
	return []domain.MarketItem{
		{ID: 1, Name: "Health Potion"},
		{ID: 2, Name: "Mana Potion"},
	}
}

func TestRun_Success(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	items := testItems()
	policy.On("EnsureSchema", ctx).Return(nil)
	collector.On("CollectCategory", ctx, domain.CollectOptions{CategoryCode: 60000, MaxPages: 50}).Return(items, nil)
	policy.On("Apply", ctx, items, 60000, mock.AnythingOfType("time.Time")).
		Return(&domain.ApplyReport{Applied: 2}, nil)

	result, err := service.Run(ctx, 60000)

	require.NoError(t, err)
	assert.Equal(t, 60000, result.CategoryCode)
	assert.Equal(t, 2, result.ItemCount)
	assert.Equal(t, 2, result.Applied)

	collector.AssertExpectations(t)
	policy.AssertExpectations(t)
}

func TestRun_FallsBackToDefaultCategory(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	policy.On("EnsureSchema", ctx).Return(nil)
	collector.On("CollectCategory", ctx, domain.CollectOptions{CategoryCode: 50000, MaxPages: 50}).
		Return([]domain.MarketItem{}, nil)

	result, err := service.Run(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, 50000, result.CategoryCode)
	collector.AssertExpectations(t)
}

func TestRun_NoUsableCategory(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 0, 50, nil)

	result, err := service.Run(ctx, -1)

	assert.Nil(t, result)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	policy.AssertNotCalled(t, "EnsureSchema")
	collector.AssertNotCalled(t, "CollectCategory")
}

func TestRun_SchemaFailureAbortsBeforeSweep(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	policy.On("EnsureSchema", ctx).Return(&domain.PersistenceError{Op: "ensure catalog schema"})

	result, err := service.Run(ctx, 0)

	assert.Nil(t, result)
	var persistenceErr *domain.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)

	collector.AssertNotCalled(t, "CollectCategory")
	policy.AssertNotCalled(t, "Apply")
}

func TestRun_SweepFailureSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	policy.On("EnsureSchema", ctx).Return(nil)
	collector.On("CollectCategory", ctx, mock.Anything).
		Return(nil, &domain.UpstreamError{Status: 429, Body: "rate limit exceeded"})

	result, err := service.Run(ctx, 0)

	assert.Nil(t, result)
	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)

	// A failed sweep must never persist anything.
	policy.AssertNotCalled(t, "Apply")
}

func TestRun_NoItemsIsSuccessWithoutApply(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	policy.On("EnsureSchema", ctx).Return(nil)
	collector.On("CollectCategory", ctx, mock.Anything).Return([]domain.MarketItem{}, nil)

	result, err := service.Run(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemCount)
	assert.Equal(t, 0, result.Applied)
	policy.AssertNotCalled(t, "Apply")
}

func TestRun_ApplyFailureReportsPartialProgress(t *testing.T) {
	ctx := context.Background()
	collector := new(MockItemCollector)
	policy := new(MockPersistencePolicy)

	service := NewService(collector, policy, 50000, 50, nil)

	items := testItems()
	policy.On("EnsureSchema", ctx).Return(nil)
	collector.On("CollectCategory", ctx, mock.Anything).Return(items, nil)
	policy.On("Apply", ctx, items, 50000, mock.AnythingOfType("time.Time")).
		Return(&domain.ApplyReport{Applied: 1, FailedItemID: 2},
			&domain.PersistenceError{Op: "upsert catalog row", ItemID: 2})

	result, err := service.Run(ctx, 0)

	// The applied prefix stays durably written and is reported.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Applied)

	var persistenceErr *domain.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Equal(t, int64(2), persistenceErr.ItemID)
}

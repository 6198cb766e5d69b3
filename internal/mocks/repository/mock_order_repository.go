package repository

import (
	"context"

	"pointshop/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a testify mock of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, filter entity.OrderFilter, offset, limit int) ([]*entity.OrderView, error) {
	args := m.Called(ctx, filter, offset, limit)
	orders, _ := args.Get(0).([]*entity.OrderView)

	return orders, args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter entity.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Stream(ctx context.Context, filter entity.OrderFilter, fn func(*entity.OrderView) error) error {
	return m.Called(ctx, filter, fn).Error(0)
}

func NewMockOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

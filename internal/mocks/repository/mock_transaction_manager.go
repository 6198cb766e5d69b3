package repository

import (
	"context"

	"pointshop/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager is a testify mock of repository.TransactionManager.
// Run the callback through Run when a test needs it executed.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)

	return args.Error(0)
}

func NewMockTransactionManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionManager {
	m := &MockTransactionManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

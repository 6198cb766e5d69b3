package service

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a testify mock of service.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, message string) {
	m.Called(ctx, message)
}

// NewMockNotifier registers expectation assertions on t's cleanup.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

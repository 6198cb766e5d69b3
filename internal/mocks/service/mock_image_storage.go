package service

import (
	"context"
	"io"

	"pointshop/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockImageStorage is a testify mock of service.ImageStorage.
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) Save(ctx context.Context, upload *service.ImageUpload) (string, error) {
	args := m.Called(ctx, upload)

	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)

	return args.Error(0)
}

func (m *MockImageStorage) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, name)

	var r io.ReadCloser
	if v := args.Get(0); v != nil {
		r = v.(io.ReadCloser)
	}

	return r, args.String(1), args.Error(2)
}

func NewMockImageStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageStorage {
	m := &MockImageStorage{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

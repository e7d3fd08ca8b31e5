// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "eto.dev/pkg/eto/internal/model"
)

// MockProcessAdapter is a mock of adapter.ProcessAdapter.
type MockProcessAdapter struct {
	mock.Mock
}

// NewMockProcessAdapter creates a MockProcessAdapter that asserts its
// expectations when the test finishes.
func NewMockProcessAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProcessAdapter {
	mockAdapter := &MockProcessAdapter{}
	mockAdapter.Test(t)

	t.Cleanup(func() { mockAdapter.AssertExpectations(t) })

	return mockAdapter
}

// WaitForExit provides a mock function.
func (_m *MockProcessAdapter) WaitForExit(ctx context.Context, pid int32) (bool, error) {
	ret := _m.Called(ctx, pid)

	return ret.Bool(0), ret.Error(1)
}

// Launch provides a mock function.
func (_m *MockProcessAdapter) Launch(spec m.LaunchSpec) error {
	ret := _m.Called(spec)

	return ret.Error(0)
}

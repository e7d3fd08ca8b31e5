// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	m "eto.dev/pkg/eto/internal/model"
)

// MockPatcher is a mock of domain.Patcher.
type MockPatcher struct {
	mock.Mock
}

// NewMockPatcher creates a MockPatcher that asserts its expectations when the
// test finishes.
func NewMockPatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPatcher {
	mockPatcher := &MockPatcher{}
	mockPatcher.Test(t)

	t.Cleanup(func() { mockPatcher.AssertExpectations(t) })

	return mockPatcher
}

// Apply provides a mock function.
func (_m *MockPatcher) Apply(packagePath, targetDir m.Path) (m.ApplyReport, error) {
	ret := _m.Called(packagePath, targetDir)

	report, _ := ret.Get(0).(m.ApplyReport)

	return report, ret.Error(1)
}

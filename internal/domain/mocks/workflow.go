package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"eto.dev/pkg/eto/internal/domain"
	m "eto.dev/pkg/eto/internal/model"
)

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow that asserts its expectations when
// the test finishes.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// ScanDirectory provides a mock function.
func (_m *MockWorkflow) ScanDirectory(path m.Path) (m.Snapshot, error) {
	ret := _m.Called(path)

	snapshot, _ := ret.Get(0).(m.Snapshot)

	return snapshot, ret.Error(1)
}

// DiffDirectories provides a mock function.
func (_m *MockWorkflow) DiffDirectories(oldPath, newPath m.Path) (m.Diff, error) {
	ret := _m.Called(oldPath, newPath)

	diff, _ := ret.Get(0).(m.Diff)

	return diff, ret.Error(1)
}

// TextDiffs provides a mock function.
func (_m *MockWorkflow) TextDiffs(oldPath, newPath m.Path, diff m.Diff) ([]m.TextDiff, error) {
	ret := _m.Called(oldPath, newPath, diff)

	diffs, _ := ret.Get(0).([]m.TextDiff)

	return diffs, ret.Error(1)
}

// BuildPackage provides a mock function.
func (_m *MockWorkflow) BuildPackage(oldPath, newPath, outputPath m.Path) (m.Diff, error) {
	ret := _m.Called(oldPath, newPath, outputPath)

	diff, _ := ret.Get(0).(m.Diff)

	return diff, ret.Error(1)
}

// ListPackage provides a mock function.
func (_m *MockWorkflow) ListPackage(packagePath m.Path) (m.Manifest, error) {
	ret := _m.Called(packagePath)

	manifest, _ := ret.Get(0).(m.Manifest)

	return manifest, ret.Error(1)
}

// ApplyPackage provides a mock function.
func (_m *MockWorkflow) ApplyPackage(packagePath, targetDir m.Path) (m.ApplyReport, error) {
	ret := _m.Called(packagePath, targetDir)

	report, _ := ret.Get(0).(m.ApplyReport)

	return report, ret.Error(1)
}

// RunSelfUpdate provides a mock function.
func (_m *MockWorkflow) RunSelfUpdate(ctx context.Context, request domain.UpdateRequest) (domain.UpdateReport, error) {
	ret := _m.Called(ctx, request)

	report, _ := ret.Get(0).(domain.UpdateReport)

	return report, ret.Error(1)
}

// ResolvePackage provides a mock function.
func (_m *MockWorkflow) ResolvePackage(pattern string) (m.Path, error) {
	ret := _m.Called(pattern)

	path, _ := ret.Get(0).(m.Path)

	return path, ret.Error(1)
}

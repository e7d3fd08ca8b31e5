package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adaptermocks "eto.dev/pkg/eto/internal/adapter/mocks"
	"eto.dev/pkg/eto/internal/domain"
	domainmocks "eto.dev/pkg/eto/internal/domain/mocks"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

func pid(v int32) *int32 {
	return &v
}

func updateRequest() domain.UpdateRequest {
	return domain.UpdateRequest{
		Package: m.Path("update.etopack"),
		Target:  m.Path("app"),
	}
}

func TestOrchestrator_NoWaitNoLaunch(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	applied := m.ApplyReport{Written: []m.RelPath{"a.txt"}}
	patcher.On("Apply", m.Path("update.etopack"), m.Path("app")).Return(applied, nil)

	orch := domain.NewOrchestrator(patcher, processes, nil, 0)
	report, err := orch.Run(context.Background(), updateRequest())

	require.NoError(t, err)
	assert.True(t, report.Applied)
	assert.False(t, report.Launched)
	assert.Equal(t, applied, report.Apply)
	processes.AssertNotCalled(t, "WaitForExit", mock.Anything, mock.Anything)
}

func TestOrchestrator_WaitsThenPatchesThenLaunches(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	var order []string

	processes.On("WaitForExit", mock.Anything, int32(4242)).
		Run(func(mock.Arguments) { order = append(order, "wait") }).
		Return(true, nil)
	patcher.On("Apply", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "apply") }).
		Return(m.ApplyReport{}, nil)

	launch := m.LaunchSpec{Path: "app/bin/app", Args: []string{"--updated"}}
	processes.On("Launch", launch).
		Run(func(mock.Arguments) { order = append(order, "launch") }).
		Return(nil)

	request := updateRequest()
	request.WaitFor = pid(4242)
	request.OnComplete = &launch

	orch := domain.NewOrchestrator(patcher, processes, nil, time.Millisecond)
	report, err := orch.Run(context.Background(), request)

	require.NoError(t, err)
	assert.True(t, report.Applied)
	assert.True(t, report.Launched)
	assert.Equal(t, []string{"wait", "apply", "launch"}, order)
}

func TestOrchestrator_ProcessNotFoundContinues(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	processes.On("WaitForExit", mock.Anything, int32(7)).Return(false, nil)
	patcher.On("Apply", mock.Anything, mock.Anything).Return(m.ApplyReport{}, nil)

	request := updateRequest()
	request.WaitFor = pid(7)

	// A large settle delay proves it is skipped when the process was never found.
	orch := domain.NewOrchestrator(patcher, processes, nil, time.Hour)
	report, err := orch.Run(context.Background(), request)

	require.NoError(t, err)
	assert.True(t, report.Applied)
}

func TestOrchestrator_WaitErrorSkipsPatch(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	processes.On("WaitForExit", mock.Anything, int32(9)).Return(false, errors.New("permission denied"))

	request := updateRequest()
	request.WaitFor = pid(9)

	orch := domain.NewOrchestrator(patcher, processes, nil, 0)
	report, err := orch.Run(context.Background(), request)

	require.Error(t, err)
	assert.Equal(t, etoerr.ProcessWaitError, etoerr.KindOf(err))
	assert.False(t, report.Applied)
	patcher.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestOrchestrator_PatchErrorSkipsLaunch(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	mismatch := etoerr.ErrVersionMismatch("1.0", "0.9")
	patcher.On("Apply", mock.Anything, mock.Anything).Return(m.ApplyReport{}, mismatch)

	request := updateRequest()
	request.OnComplete = &m.LaunchSpec{Path: "app/bin/app"}

	orch := domain.NewOrchestrator(patcher, processes, nil, 0)
	report, err := orch.Run(context.Background(), request)

	require.ErrorIs(t, err, mismatch)
	assert.False(t, report.Applied)
	assert.False(t, report.Launched)
	processes.AssertNotCalled(t, "Launch", mock.Anything)
}

func TestOrchestrator_LaunchFailureKeepsApplied(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	patcher.On("Apply", mock.Anything, mock.Anything).Return(m.ApplyReport{}, nil)
	processes.On("Launch", mock.Anything).Return(errors.New("exec format error"))

	request := updateRequest()
	request.OnComplete = &m.LaunchSpec{Path: "app/bin/app"}

	orch := domain.NewOrchestrator(patcher, processes, nil, 0)
	report, err := orch.Run(context.Background(), request)

	require.Error(t, err)
	assert.Equal(t, etoerr.LaunchError, etoerr.KindOf(err))
	assert.True(t, report.Applied)
	assert.False(t, report.Launched)
}

func TestOrchestrator_CancelledWhileSettling(t *testing.T) {
	patcher := domainmocks.NewMockPatcher(t)
	processes := adaptermocks.NewMockProcessAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())

	processes.On("WaitForExit", mock.Anything, int32(11)).
		Run(func(mock.Arguments) { cancel() }).
		Return(true, nil)

	request := updateRequest()
	request.WaitFor = pid(11)

	orch := domain.NewOrchestrator(patcher, processes, nil, time.Hour)
	report, err := orch.Run(ctx, request)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, etoerr.ProcessWaitError, etoerr.KindOf(err))
	assert.False(t, report.Applied)
	patcher.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eto.dev/pkg/eto/internal/adapter"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// DefaultSettleDelay is how long to pause after a waited-on process exits,
// since its file handles may be released a little later.
const DefaultSettleDelay = time.Second

// UpdateRequest describes one self-update run.
type UpdateRequest struct {
	Package m.Path
	Target  m.Path
	// WaitFor is the pid of a process that must exit before patching.
	WaitFor *int32
	// OnComplete is started once the patch has been applied.
	OnComplete *m.LaunchSpec
}

// UpdateReport is the outcome of a self-update run.
type UpdateReport struct {
	// Applied is true once the patch succeeded. Only then may the package be removed.
	Applied  bool
	Launched bool
	Apply    m.ApplyReport
}

// Orchestrator sequences a patch around a running process: wait for it to
// exit, patch, then start its successor.
type Orchestrator interface {
	Run(ctx context.Context, request UpdateRequest) (UpdateReport, error)
}

type orchestrator struct {
	patcher     Patcher
	processes   adapter.ProcessAdapter
	logger      *slog.Logger
	settleDelay time.Duration
}

// NewOrchestrator constructs an Orchestrator backed by the provided patcher
// and process adapter.
func NewOrchestrator(patcher Patcher, processes adapter.ProcessAdapter, logger *slog.Logger, settleDelay time.Duration) Orchestrator {
	if settleDelay < 0 {
		settleDelay = 0
	}

	return &orchestrator{
		patcher:     patcher,
		processes:   processes,
		logger:      loggerOrDefault(logger),
		settleDelay: settleDelay,
	}
}

// Run blocks on request.WaitFor without a timeout of its own; callers that
// need a bound set a deadline on ctx.
func (o *orchestrator) Run(ctx context.Context, request UpdateRequest) (UpdateReport, error) {
	report := UpdateReport{}

	if request.WaitFor != nil {
		if err := o.waitForProcess(ctx, *request.WaitFor); err != nil {
			return report, err
		}
	}

	applyReport, err := o.patcher.Apply(request.Package, request.Target)
	report.Apply = applyReport

	if err != nil {
		o.logger.Error("failed to apply package", "package", request.Package, "target", request.Target, "error", err)
		return report, err
	}

	report.Applied = true

	o.logger.Info("package applied", "package", request.Package, "written", len(applyReport.Written), "deleted", len(applyReport.Deleted), "warnings", len(applyReport.Warnings))

	if request.OnComplete != nil {
		if err := o.processes.Launch(*request.OnComplete); err != nil {
			o.logger.Error("failed to run on_complete", "path", request.OnComplete.Path, "error", err)
			return report, etoerr.ErrLaunch(request.OnComplete.Path, err)
		}

		o.logger.Info("launched on_complete", "path", request.OnComplete.Path)
		report.Launched = true
	}

	return report, nil
}

func (o *orchestrator) waitForProcess(ctx context.Context, pid int32) error {
	o.logger.Info("waiting for process to close", "pid", pid)

	found, err := o.processes.WaitForExit(ctx, pid)
	if err != nil {
		return etoerr.ErrProcessWait(pid, err)
	}

	if !found {
		o.logger.Warn("process not found", "pid", pid)
		return nil
	}

	if o.settleDelay == 0 {
		return nil
	}

	timer := time.NewTimer(o.settleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return etoerr.ErrProcessWait(pid, errors.Join(ctx.Err(), errors.New("interrupted while settling")))
	case <-timer.C:
		return nil
	}
}

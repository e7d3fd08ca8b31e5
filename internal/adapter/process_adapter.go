package adapter

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	m "eto.dev/pkg/eto/internal/model"
)

// DefaultPollInterval is how often a waited-on process is checked for exit.
const DefaultPollInterval = 250 * time.Millisecond

// ProcessAdapter abstracts operating system process handling for self-updates.
type ProcessAdapter interface {
	// WaitForExit blocks until the process with pid has terminated. found is
	// false when no such process exists. There is no built-in timeout; ctx is
	// the only way to stop waiting.
	WaitForExit(ctx context.Context, pid int32) (found bool, err error)

	// Launch starts a detached process described by spec without waiting for it.
	Launch(spec m.LaunchSpec) error
}

// LocalProcessAdapter provides a ProcessAdapter backed by gopsutil and os/exec.
type LocalProcessAdapter struct {
	pollInterval time.Duration
}

// NewLocalProcessAdapter constructs a LocalProcessAdapter polling at the given interval.
// A non-positive interval selects DefaultPollInterval.
func NewLocalProcessAdapter(pollInterval time.Duration) *LocalProcessAdapter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &LocalProcessAdapter{
		pollInterval: pollInterval,
	}
}

// WaitForExit polls the process table until pid is gone. A non-positive pid
// never names a process and is reported as not found.
func (a *LocalProcessAdapter) WaitForExit(ctx context.Context, pid int32) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return false, nil
		}

		return false, err
	}

	// Cache the creation time so a recycled pid is not mistaken for the original process.
	if _, err := proc.CreateTimeWithContext(ctx); err != nil {
		running, existsErr := process.PidExistsWithContext(ctx, pid)
		if existsErr == nil && !running {
			return true, nil
		}

		return true, err
	}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		running, err := proc.IsRunningWithContext(ctx)
		if err != nil {
			return true, err
		}

		if !running {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Launch starts the process and releases it so it outlives the updater.
func (a *LocalProcessAdapter) Launch(spec m.LaunchSpec) error {
	// #nosec G204 - the successor command is supplied by the operator
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir

	if err := cmd.Start(); err != nil {
		return err
	}

	return cmd.Process.Release()
}

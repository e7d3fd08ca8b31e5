// Package domain implements the eto diff and patch engine: scanning tracked
// directories, diffing snapshots, encoding package containers and applying them.
package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"eto.dev/pkg/eto/internal/adapter"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// binarySniffLen is how many leading bytes are checked for NUL when deciding
// whether a file is text.
const binarySniffLen = 8000

// Options tunes the components wired by NewWorkflow.
type Options struct {
	ScanWorkers      int
	CompressionLevel int
	SettleDelay      time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ScanWorkers:      1,
		CompressionLevel: -1,
		SettleDelay:      DefaultSettleDelay,
	}
}

// Workflow exposes the engine's entry points to the CLI.
type Workflow interface {
	ScanDirectory(path m.Path) (m.Snapshot, error)
	DiffDirectories(oldPath, newPath m.Path) (m.Diff, error)
	TextDiffs(oldPath, newPath m.Path, diff m.Diff) ([]m.TextDiff, error)
	BuildPackage(oldPath, newPath, outputPath m.Path) (m.Diff, error)
	ListPackage(packagePath m.Path) (m.Manifest, error)
	ApplyPackage(packagePath, targetDir m.Path) (m.ApplyReport, error)
	RunSelfUpdate(ctx context.Context, request UpdateRequest) (UpdateReport, error)
	// ResolvePackage expands pattern to exactly one package file.
	ResolvePackage(pattern string) (m.Path, error)
}

type workflow struct {
	Scanner
	Differ
	Codec
	Patcher
	Orchestrator

	fsAdapter adapter.TreeFSAdapter
	logger    *slog.Logger
}

// NewWorkflow wires the engine components on top of the given adapters.
func NewWorkflow(
	fsAdapter adapter.TreeFSAdapter,
	processAdapter adapter.ProcessAdapter,
	logger *slog.Logger,
	options Options,
) Workflow {
	logger = loggerOrDefault(logger)

	codec := NewCodec(fsAdapter, logger, WithCompressionLevel(options.CompressionLevel))
	patcher := NewPatcher(fsAdapter, codec, logger)

	return &workflow{
		Scanner:      NewScanner(fsAdapter, logger, WithScanWorkers(options.ScanWorkers)),
		Differ:       NewDiffer(logger),
		Codec:        codec,
		Patcher:      patcher,
		Orchestrator: NewOrchestrator(patcher, processAdapter, logger, options.SettleDelay),
		fsAdapter:    fsAdapter,
		logger:       logger,
	}
}

func (w *workflow) ScanDirectory(path m.Path) (m.Snapshot, error) {
	return w.Scan(path)
}

func (w *workflow) DiffDirectories(oldPath, newPath m.Path) (m.Diff, error) {
	oldState, err := w.Scan(oldPath)
	if err != nil {
		return m.Diff{}, fmt.Errorf("failed to read a state: %w", err)
	}

	newState, err := w.Scan(newPath)
	if err != nil {
		return m.Diff{}, fmt.Errorf("failed to read b state: %w", err)
	}

	return w.Diff(oldState, newState), nil
}

func (w *workflow) TextDiffs(oldPath, newPath m.Path, diff m.Diff) ([]m.TextDiff, error) {
	diffs := make([]m.TextDiff, 0, len(diff.Change))

	for _, rel := range diff.Change {
		before, err := w.fsAdapter.ReadFile(rel.Join(oldPath))
		if err != nil {
			return nil, etoerr.ErrFileRead("diff", string(rel), err)
		}

		after, err := w.fsAdapter.ReadFile(rel.Join(newPath))
		if err != nil {
			return nil, etoerr.ErrFileRead("diff", string(rel), err)
		}

		if isBinary(before) || isBinary(after) {
			diffs = append(diffs, m.TextDiff{Path: rel, Binary: true})
			continue
		}

		unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(string(after)),
			FromFile: "a/" + string(rel),
			ToFile:   "b/" + string(rel),
			Context:  3,
		})
		if err != nil {
			return nil, fmt.Errorf("unified diff for %s: %w", rel, err)
		}

		diffs = append(diffs, m.TextDiff{Path: rel, Unified: unified})
	}

	return diffs, nil
}

func (w *workflow) BuildPackage(oldPath, newPath, outputPath m.Path) (m.Diff, error) {
	diff, err := w.DiffDirectories(oldPath, newPath)
	if err != nil {
		return m.Diff{}, err
	}

	if err := w.Encode(diff, newPath, outputPath); err != nil {
		return diff, fmt.Errorf("failed to create package: %w", err)
	}

	w.logger.Info("package created", "path", outputPath, "add", len(diff.Add), "change", len(diff.Change), "delete", len(diff.Delete))

	return diff, nil
}

func (w *workflow) ListPackage(packagePath m.Path) (m.Manifest, error) {
	return w.ReadManifest(packagePath)
}

func (w *workflow) ApplyPackage(packagePath, targetDir m.Path) (m.ApplyReport, error) {
	return w.Apply(packagePath, targetDir)
}

func (w *workflow) RunSelfUpdate(ctx context.Context, request UpdateRequest) (UpdateReport, error) {
	return w.Run(ctx, request)
}

func (w *workflow) ResolvePackage(pattern string) (m.Path, error) {
	matches, err := w.fsAdapter.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid package pattern %q: %w", pattern, err)
	}

	switch len(matches) {
	case 0:
		return "", etoerr.ErrPackageNotFound(pattern)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, match := range matches {
			names = append(names, string(match))
		}

		return "", etoerr.ErrAmbiguousPackage(pattern, names)
	}
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}

	return bytes.IndexByte(data, 0) >= 0
}

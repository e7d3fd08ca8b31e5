package domain

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"eto.dev/pkg/eto/internal/adapter"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// Patcher applies packages to tracked directories.
//
// Writes and deletes are not transactional: a failure part way through leaves
// the target with some files already replaced. Callers must not assume rollback.
type Patcher interface {
	Apply(packagePath, targetDir m.Path) (m.ApplyReport, error)
}

type patcher struct {
	fsAdapter adapter.TreeFSAdapter
	codec     Codec
	logger    *slog.Logger
}

// NewPatcher constructs a Patcher reading packages through codec.
func NewPatcher(fsAdapter adapter.TreeFSAdapter, codec Codec, logger *slog.Logger) Patcher {
	return &patcher{
		fsAdapter: fsAdapter,
		codec:     codec,
		logger:    loggerOrDefault(logger),
	}
}

func (p *patcher) Apply(packagePath, targetDir m.Path) (m.ApplyReport, error) {
	report := m.ApplyReport{}

	handle, err := p.codec.Open(packagePath)
	if err != nil {
		return report, err
	}

	defer func() {
		if err := handle.Close(); err != nil {
			p.logger.Warn("failed to close package", "path", packagePath, "error", err)
		}
	}()

	metadata, err := readMetadata(p.fsAdapter, targetDir)
	if err != nil {
		return report, etoerr.ErrNotTrackedDirectory(string(targetDir), err)
	}

	diff := handle.Manifest.Diff
	if diff.OldVersion != metadata.Version {
		return report, etoerr.ErrVersionMismatch(diff.OldVersion, metadata.Version)
	}

	p.logger.Info("applying package", "from", diff.OldVersion, "to", diff.NewVersion, "target", targetDir)

	written, err := p.writeFiles(handle, targetDir)
	report.Written = written

	if err != nil {
		return report, err
	}

	report.Deleted, report.Warnings, err = p.deleteFiles(diff.Delete, targetDir)
	if err != nil {
		return report, err
	}

	return report, nil
}

// writeFiles extracts every payload entry into targetDir, then checks that
// each added or changed path of the manifest was present.
func (p *patcher) writeFiles(handle *PackageHandle, targetDir m.Path) ([]m.RelPath, error) {
	expected := make(map[m.RelPath]bool)
	for _, rel := range handle.Manifest.Diff.Payload() {
		expected[rel] = false
	}

	payload, err := handle.Payload()
	if err != nil {
		return nil, err
	}

	var written []m.RelPath

	for {
		entry, err := payload.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, err
		}

		if _, ok := expected[entry.Path]; !ok {
			return written, etoerr.ErrExtraction(string(entry.Path), errors.New("entry not listed in manifest"))
		}

		p.logger.Info("writing", "path", entry.Path)

		if err := p.fsAdapter.WriteFile(entry.Path.Join(targetDir), entry, entry.Mode); err != nil {
			return written, etoerr.ErrExtraction(string(entry.Path), err)
		}

		expected[entry.Path] = true
		written = append(written, entry.Path)
	}

	for _, rel := range handle.Manifest.Diff.Payload() {
		if !expected[rel] {
			return written, etoerr.ErrExtraction(string(rel), errors.New("entry missing from payload"))
		}
	}

	return written, nil
}

// deleteFiles removes paths from targetDir. Failing to remove a file is not
// fatal: the package may be re-applied to an already patched directory.
func (p *patcher) deleteFiles(paths []m.RelPath, targetDir m.Path) ([]m.RelPath, []error, error) {
	var (
		deleted  []m.RelPath
		warnings []error
	)

	for _, rel := range paths {
		if !rel.IsLocal() {
			return deleted, warnings, etoerr.ErrExtraction(string(rel), errors.New("delete escapes target directory"))
		}

		p.logger.Info("delete", "path", rel)

		if err := p.fsAdapter.Remove(rel.Join(targetDir)); err != nil {
			warning := etoerr.ErrDeleteWarning(string(rel), err)
			if !errors.Is(err, fs.ErrNotExist) {
				warning.Message = "failed to remove file"
			}

			p.logger.Warn(warning.Message, "path", rel)
			warnings = append(warnings, warning)

			continue
		}

		deleted = append(deleted, rel)
	}

	return deleted, warnings, nil
}

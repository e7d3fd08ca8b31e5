package domain

import (
	"context"
	"io/fs"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"eto.dev/pkg/eto/internal/adapter"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// Scanner builds content-addressed snapshots of tracked directories.
type Scanner interface {
	// Scan reads the metadata of root and hashes every tracked file under it.
	// Any unreadable file fails the whole scan.
	Scan(root m.Path) (m.Snapshot, error)
}

// ScanOption configures a Scanner.
type ScanOption func(*scanner)

// WithScanWorkers bounds how many files are hashed concurrently.
// The snapshot does not depend on the worker count.
func WithScanWorkers(workers int) ScanOption {
	return func(s *scanner) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

type scanner struct {
	fsAdapter adapter.TreeFSAdapter
	logger    *slog.Logger
	workers   int
}

// NewScanner constructs a Scanner on top of the given filesystem adapter.
func NewScanner(fsAdapter adapter.TreeFSAdapter, logger *slog.Logger, options ...ScanOption) Scanner {
	s := &scanner{
		fsAdapter: fsAdapter,
		logger:    loggerOrDefault(logger),
		workers:   1,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *scanner) Scan(root m.Path) (m.Snapshot, error) {
	s.logger.Info("reading state", "directory", root)

	metadata, err := readMetadata(s.fsAdapter, root)
	if err != nil {
		return m.Snapshot{}, etoerr.ErrMissingMetadata(string(root), err)
	}

	s.logger.Info("metadata", "version", metadata.Version)

	ignores, err := compileIgnores(metadata.Ignore)
	if err != nil {
		return m.Snapshot{}, err
	}

	paths, err := s.collect(root, ignores)
	if err != nil {
		return m.Snapshot{}, err
	}

	files, err := s.hashAll(root, paths)
	if err != nil {
		return m.Snapshot{}, err
	}

	return m.Snapshot{
		Version: metadata.Version,
		Files:   files,
	}, nil
}

// collect lists every tracked regular file under root. The metadata file is
// tracked even when an ignore pattern matches it.
func (s *scanner) collect(root m.Path, ignores ignoreSet) ([]m.RelPath, error) {
	var paths []m.RelPath

	err := s.fsAdapter.Walk(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return etoerr.ErrFileRead("walk", path, err)
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			s.logger.Debug("skipping non-regular file", "path", path)
			return nil
		}

		rel, err := s.fsAdapter.RelPath(root, m.Path(path))
		if err != nil {
			return etoerr.ErrFileRead("walk", path, err)
		}

		relPath := m.ToRelPath(string(rel))
		if relPath != m.MetadataFileName && ignores.Match(relPath) {
			s.logger.Debug("ignoring", "path", relPath)
			return nil
		}

		paths = append(paths, relPath)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (s *scanner) hashAll(root m.Path, paths []m.RelPath) (map[m.RelPath]string, error) {
	files := make(map[m.RelPath]string, len(paths))

	var mu sync.Mutex

	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(s.workers)

	for _, rel := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			hash, err := s.fsAdapter.HashFile(rel.Join(root))
			if err != nil {
				return etoerr.ErrFileRead("hash", string(rel), err)
			}

			s.logger.Debug("adding", "path", rel, "hash", hash)

			mu.Lock()
			files[rel] = hash
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

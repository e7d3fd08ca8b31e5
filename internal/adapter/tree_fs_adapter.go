// Package adapter contains filesystem and process adapters used by the eto engine.
package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	m "eto.dev/pkg/eto/internal/model"
)

// TreeFSAdapter abstracts the filesystem operations the domain layer performs
// on tracked directories and package files, so the scan, codec and patch logic
// can be tested against fakes.
//
//nolint:interfacebloat // A richer interface keeps domain logic decoupled from os/fs.
type TreeFSAdapter interface {
	// Walk traverses root recursively in lexical order.
	Walk(root m.Path, fn fs.WalkDirFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// HashFile returns the hex encoded SHA-256 digest of the file at path.
	HashFile(path m.Path) (string, error)

	// Open opens a file for reading.
	Open(path m.Path) (fs.File, error)

	// WriteFile creates or truncates path with the content of r, creating
	// parent directories as needed.
	WriteFile(path m.Path, r io.Reader, perm os.FileMode) error

	// Remove deletes a single file.
	Remove(path m.Path) error

	// CreateTemp creates a new temporary file in dir.
	CreateTemp(dir, pattern string) (*os.File, error)

	// Rename moves oldPath to newPath, replacing newPath if it exists.
	Rename(oldPath, newPath m.Path) error

	// CopyDir recursively copies a directory tree.
	CopyDir(src, dst m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// Glob returns the paths matching a doublestar pattern, sorted.
	Glob(pattern string) ([]m.Path, error)
}

// LocalTreeFSAdapter implements TreeFSAdapter on the local disk.
type LocalTreeFSAdapter struct{}

// NewLocalTreeFSAdapter constructs a LocalTreeFSAdapter.
func NewLocalTreeFSAdapter() *LocalTreeFSAdapter {
	return &LocalTreeFSAdapter{}
}

// Walk iterates over every entry under root. A root that is a symlink is
// followed; reported paths stay under root as given.
func (a *LocalTreeFSAdapter) Walk(root m.Path, fn fs.WalkDirFunc) error {
	resolved, err := filepath.EvalSymlinks(string(root))
	if err != nil {
		return fn(string(root), nil, err)
	}

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(resolved, path)
		if relErr != nil {
			return relErr
		}

		return fn(filepath.Join(string(root), rel), d, err)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalTreeFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalTreeFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Open opens a file for reading.
func (a *LocalTreeFSAdapter) Open(path m.Path) (fs.File, error) {
	// #nosec G304 - path is resolved under a tracked directory by the caller
	return os.Open(string(path))
}

// WriteFile creates or overwrites path with the content read from r.
func (a *LocalTreeFSAdapter) WriteFile(path m.Path, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o755); err != nil {
		return err
	}

	// #nosec G304 - path is resolved under the patch target by the caller
	f, err := os.OpenFile(string(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	// OpenFile only applies perm on creation.
	return os.Chmod(string(path), perm)
}

// Remove deletes a single file.
func (a *LocalTreeFSAdapter) Remove(path m.Path) error {
	return os.Remove(string(path))
}

// CreateTemp creates a new temporary file in dir.
func (a *LocalTreeFSAdapter) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

// Rename moves oldPath to newPath.
func (a *LocalTreeFSAdapter) Rename(oldPath, newPath m.Path) error {
	return os.Rename(string(oldPath), string(newPath))
}

// CopyDir recursively copies a directory tree, keeping file modes.
func (a *LocalTreeFSAdapter) CopyDir(src, dst m.Path) error {
	return filepath.WalkDir(string(src), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(string(dst), relPath)

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			return os.MkdirAll(targetPath, info.Mode().Perm()|0o700)
		}

		return a.copyFile(path, targetPath, info.Mode().Perm())
	})
}

func (a *LocalTreeFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is a file inside the tree being copied
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	return a.WriteFile(m.Path(dst), sourceFile, mode)
}

// RelPath returns the relative path from base to target.
func (a *LocalTreeFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// Glob expands a doublestar pattern against the local filesystem.
func (a *LocalTreeFSAdapter) Glob(pattern string) ([]m.Path, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	paths := make([]m.Path, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, m.Path(match))
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths, nil
}

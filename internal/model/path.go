// Package model defines the data structures shared by the eto diff and patch engine.
package model

import (
	"path"
	"path/filepath"
	"strings"
)

// Path represents a file system path in host form.
type Path string

// RelPath is a slash-separated path relative to the root of a tracked directory.
// It is the key used in snapshots, manifests and package archives.
type RelPath string

// ToRelPath normalizes a host relative path into RelPath form.
func ToRelPath(rel string) RelPath {
	return RelPath(path.Clean(filepath.ToSlash(rel)))
}

// Join resolves the relative path under root in host form.
func (r RelPath) Join(root Path) Path {
	return Path(filepath.Join(string(root), filepath.FromSlash(string(r))))
}

// IsLocal reports whether the path stays inside the root it is relative to.
func (r RelPath) IsLocal() bool {
	s := string(r)
	if s == "" || strings.HasPrefix(s, "/") {
		return false
	}

	return filepath.IsLocal(filepath.FromSlash(s))
}

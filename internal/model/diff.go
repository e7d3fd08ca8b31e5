package model

// Diff lists the paths added, changed and deleted between two snapshots.
// Each list is sorted by path.
type Diff struct {
	OldVersion string    `json:"old_version" yaml:"old_version"`
	NewVersion string    `json:"new_version" yaml:"new_version"`
	Add        []RelPath `json:"add" yaml:"add"`
	Change     []RelPath `json:"change" yaml:"change"`
	Delete     []RelPath `json:"delete" yaml:"delete"`
}

// IsEmpty reports whether the diff carries no file operations.
func (d Diff) IsEmpty() bool {
	return len(d.Add) == 0 && len(d.Change) == 0 && len(d.Delete) == 0
}

// Payload returns the paths whose content travels inside a package, add first then change.
func (d Diff) Payload() []RelPath {
	paths := make([]RelPath, 0, len(d.Add)+len(d.Change))
	paths = append(paths, d.Add...)

	return append(paths, d.Change...)
}

// TextDiff is a unified diff of one changed file.
type TextDiff struct {
	Path RelPath
	// Binary is set when either side is not text; Unified is then empty.
	Binary  bool
	Unified string
}

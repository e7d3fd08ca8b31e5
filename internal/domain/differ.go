package domain

import (
	"log/slog"
	"sort"

	m "eto.dev/pkg/eto/internal/model"
)

// Differ compares snapshots.
type Differ interface {
	// Diff classifies every path of old and new as added, changed or deleted.
	Diff(old, new m.Snapshot) m.Diff
}

type differ struct {
	logger *slog.Logger
}

// NewDiffer constructs a Differ.
func NewDiffer(logger *slog.Logger) Differ {
	return &differ{logger: loggerOrDefault(logger)}
}

func (d *differ) Diff(old, new m.Snapshot) m.Diff {
	d.logger.Info("diffing states", "old_version", old.Version, "new_version", new.Version)

	diff := m.Diff{
		OldVersion: old.Version,
		NewVersion: new.Version,
		Add:        []m.RelPath{},
		Change:     []m.RelPath{},
		Delete:     []m.RelPath{},
	}

	for path, hash := range new.Files {
		oldHash, ok := old.Files[path]
		switch {
		case !ok:
			d.logger.Info("new", "path", path)
			diff.Add = append(diff.Add, path)
		case oldHash != hash:
			d.logger.Info("change", "path", path)
			diff.Change = append(diff.Change, path)
		}
	}

	for path := range old.Files {
		if _, ok := new.Files[path]; !ok {
			d.logger.Info("delete", "path", path)
			diff.Delete = append(diff.Delete, path)
		}
	}

	// Map iteration is random; sorting keeps package bytes reproducible.
	sortPaths(diff.Add)
	sortPaths(diff.Change)
	sortPaths(diff.Delete)

	return diff
}

func sortPaths(paths []m.RelPath) {
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
}

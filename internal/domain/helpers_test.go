package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"eto.dev/pkg/eto/internal/adapter"
	m "eto.dev/pkg/eto/internal/model"
)

// writeTracked creates a tracked directory with the given marker and files.
func writeTracked(t *testing.T, root, version string, ignore []string, files map[string]string) {
	t.Helper()

	if ignore == nil {
		ignore = []string{}
	}

	data, err := json.Marshal(m.Metadata{Version: version, Ignore: ignore})
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, m.MetadataFileName), string(data))

	for rel, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func copyTree(t *testing.T, src string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, adapter.NewLocalTreeFSAdapter().CopyDir(m.Path(src), m.Path(dst)))
	return dst
}

func scan(t *testing.T, root string) m.Snapshot {
	t.Helper()
	snapshot, err := NewScanner(adapter.NewLocalTreeFSAdapter(), nil).Scan(m.Path(root))
	require.NoError(t, err)
	return snapshot
}

func relPaths(paths ...string) []m.RelPath {
	out := make([]m.RelPath, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.RelPath(p))
	}
	return out
}

// failingHashFS fails HashFile for one path and delegates everything else to disk.
type failingHashFS struct {
	*adapter.LocalTreeFSAdapter
	failPath string
	err      error
}

func (f *failingHashFS) HashFile(path m.Path) (string, error) {
	if filepath.Base(string(path)) == f.failPath {
		return "", f.err
	}

	return f.LocalTreeFSAdapter.HashFile(path)
}

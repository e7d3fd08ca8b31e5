package controller

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eto.dev/pkg/eto/internal/domain"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

func newBufferedCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return cmd, &buf
}

func sampleDiff() m.Diff {
	return m.Diff{
		OldVersion: "1.0",
		NewVersion: "2.0",
		Add:        []m.RelPath{"b.txt"},
		Change:     []m.RelPath{"a.txt", "eto.json"},
		Delete:     []m.RelPath{"old/gone.txt"},
	}
}

func TestSimpleUI_DisplayManifest(t *testing.T) {
	tests := []struct {
		name         string
		diff         m.Diff
		wantContains []string
	}{
		{
			name:         "all sections",
			diff:         sampleDiff(),
			wantContains: []string{"update.etopack", "format 0.1.0", "1.0 -> 2.0", "add", "b.txt", "change", "a.txt", "delete", "old/gone.txt", "4"},
		},
		{
			name:         "no changes",
			diff:         m.Diff{OldVersion: "1.0", NewVersion: "1.0"},
			wantContains: []string{"1.0 -> 1.0", "no changes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, buf := newBufferedCmd()

			err := NewSimpleUI(cmd, false).DisplayManifest("update.etopack", m.Manifest{Version: m.ManifestVersion, Diff: tt.diff})
			require.NoError(t, err)

			for _, want := range tt.wantContains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestSimpleUI_DisplaySnapshotIsSorted(t *testing.T) {
	cmd, buf := newBufferedCmd()

	snapshot := m.Snapshot{
		Version: "3.1",
		Files: map[m.RelPath]string{
			"z.txt":    "ffff",
			"a.txt":    "aaaa",
			"eto.json": "eeee",
		},
	}

	require.NoError(t, NewSimpleUI(cmd, false).DisplaySnapshot("app", snapshot))

	out := buf.String()
	assert.Contains(t, out, "version 3.1")
	assert.Contains(t, out, "Total Files 3")
	assert.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "eto.json"))
	assert.Less(t, strings.Index(out, "eto.json"), strings.Index(out, "z.txt"))
}

func TestSimpleUI_DisplayDiffWithUnified(t *testing.T) {
	cmd, buf := newBufferedCmd()

	textDiffs := []m.TextDiff{
		{Path: "a.txt", Unified: "--- a/a.txt\n+++ b/a.txt\n@@ -1 +1 @@\n-hello\n+hello world\n"},
		{Path: "logo.png", Binary: true},
	}

	require.NoError(t, NewSimpleUI(cmd, false).DisplayDiff(sampleDiff(), textDiffs))

	out := buf.String()
	assert.Contains(t, out, "+hello world")
	assert.Contains(t, out, "Binary files a/logo.png and b/logo.png differ")
}

func TestSimpleUI_DisplayPackageCreated(t *testing.T) {
	cmd, buf := newBufferedCmd()

	require.NoError(t, NewSimpleUI(cmd, false).DisplayPackageCreated("v2.etopack", sampleDiff()))
	assert.Equal(t, "Created v2.etopack (1.0 -> 2.0): 1 added, 2 changed, 1 deleted\n", buf.String())
}

func TestSimpleUI_DisplayApplyReport(t *testing.T) {
	cmd, buf := newBufferedCmd()

	report := m.ApplyReport{
		Written:  []m.RelPath{"a.txt", "b.txt"},
		Deleted:  []m.RelPath{},
		Warnings: []error{etoerr.ErrDeleteWarning("old.txt", errors.New("no such file"))},
	}

	require.NoError(t, NewSimpleUI(cmd, false).DisplayApplyReport("app", report))

	out := buf.String()
	assert.Contains(t, out, "Patched app: 2 written, 0 deleted")
	assert.Contains(t, out, "warning: DeleteWarning")
	assert.Contains(t, out, "old.txt")
}

func TestSimpleUI_DisplayUpdateReport(t *testing.T) {
	request := domain.UpdateRequest{
		Package:    "update.etopack",
		Target:     "app",
		OnComplete: &m.LaunchSpec{Path: "app/bin/app"},
	}

	t.Run("applied and launched", func(t *testing.T) {
		cmd, buf := newBufferedCmd()

		err := NewSimpleUI(cmd, false).DisplayUpdateReport(request, domain.UpdateReport{Applied: true, Launched: true})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Patched app")
		assert.Contains(t, buf.String(), "Launched app/bin/app")
	})

	t.Run("not applied", func(t *testing.T) {
		cmd, buf := newBufferedCmd()

		err := NewSimpleUI(cmd, false).DisplayUpdateReport(request, domain.UpdateReport{})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "update.etopack was not applied")
		assert.NotContains(t, buf.String(), "Launched")
	})
}

func TestSimpleUI_UnstyledHasNoEscapes(t *testing.T) {
	cmd, buf := newBufferedCmd()

	require.NoError(t, NewSimpleUI(cmd, false).DisplayManifest("p", m.Manifest{Diff: sampleDiff()}))
	assert.NotContains(t, buf.String(), "\x1b[")
}

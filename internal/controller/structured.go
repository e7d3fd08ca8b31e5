package controller

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"eto.dev/pkg/eto/internal/domain"
	m "eto.dev/pkg/eto/internal/model"
)

// StructuredUI writes one JSON or YAML document per result, for scripts.
type StructuredUI struct {
	cmd    *cobra.Command
	format Format
}

// NewStructuredUI creates a StructuredUI for FormatJSON or FormatYAML.
func NewStructuredUI(cmd *cobra.Command, format Format) *StructuredUI {
	return &StructuredUI{cmd: cmd, format: format}
}

type snapshotView struct {
	Root     m.Path     `json:"root" yaml:"root"`
	Snapshot m.Snapshot `json:"snapshot" yaml:"snapshot"`
}

type textDiffView struct {
	Path    m.RelPath `json:"path" yaml:"path"`
	Binary  bool      `json:"binary" yaml:"binary"`
	Unified string    `json:"unified,omitempty" yaml:"unified,omitempty"`
}

type diffView struct {
	Diff      m.Diff         `json:"diff" yaml:"diff"`
	TextDiffs []textDiffView `json:"text_diffs,omitempty" yaml:"text_diffs,omitempty"`
}

type manifestView struct {
	Package  m.Path     `json:"package" yaml:"package"`
	Manifest m.Manifest `json:"manifest" yaml:"manifest"`
}

type applyView struct {
	Target   m.Path      `json:"target" yaml:"target"`
	Written  []m.RelPath `json:"written" yaml:"written"`
	Deleted  []m.RelPath `json:"deleted" yaml:"deleted"`
	Warnings []string    `json:"warnings" yaml:"warnings"`
}

type updateView struct {
	Package  m.Path     `json:"package" yaml:"package"`
	Applied  bool       `json:"applied" yaml:"applied"`
	Launched bool       `json:"launched" yaml:"launched"`
	Apply    *applyView `json:"apply,omitempty" yaml:"apply,omitempty"`
}

// DisplaySnapshot writes the snapshot of root.
func (s *StructuredUI) DisplaySnapshot(root m.Path, snapshot m.Snapshot) error {
	return s.write(snapshotView{Root: root, Snapshot: snapshot})
}

// DisplayDiff writes the diff and any unified text diffs.
func (s *StructuredUI) DisplayDiff(diff m.Diff, textDiffs []m.TextDiff) error {
	view := diffView{Diff: diff}
	for _, textDiff := range textDiffs {
		view.TextDiffs = append(view.TextDiffs, textDiffView(textDiff))
	}

	return s.write(view)
}

// DisplayManifest writes the manifest of the package at path.
func (s *StructuredUI) DisplayManifest(path m.Path, manifest m.Manifest) error {
	return s.write(manifestView{Package: path, Manifest: manifest})
}

// DisplayPackageCreated writes the manifest of the package just built.
func (s *StructuredUI) DisplayPackageCreated(path m.Path, diff m.Diff) error {
	return s.write(manifestView{Package: path, Manifest: m.Manifest{Version: m.ManifestVersion, Diff: diff}})
}

// DisplayApplyReport writes what a patch did to target.
func (s *StructuredUI) DisplayApplyReport(target m.Path, report m.ApplyReport) error {
	return s.write(newApplyView(target, report))
}

// DisplayUpdateReport writes the outcome of a self-update run.
func (s *StructuredUI) DisplayUpdateReport(request domain.UpdateRequest, report domain.UpdateReport) error {
	view := updateView{
		Package:  request.Package,
		Applied:  report.Applied,
		Launched: report.Launched,
	}

	if report.Applied {
		apply := newApplyView(request.Target, report.Apply)
		view.Apply = &apply
	}

	return s.write(view)
}

func newApplyView(target m.Path, report m.ApplyReport) applyView {
	view := applyView{
		Target:   target,
		Written:  nonNil(report.Written),
		Deleted:  nonNil(report.Deleted),
		Warnings: make([]string, 0, len(report.Warnings)),
	}

	for _, warning := range report.Warnings {
		view.Warnings = append(view.Warnings, warning.Error())
	}

	return view
}

func nonNil(paths []m.RelPath) []m.RelPath {
	if paths == nil {
		return []m.RelPath{}
	}

	return paths
}

func (s *StructuredUI) write(v any) error {
	out := s.cmd.OutOrStdout()

	switch s.format {
	case FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return encoder.Close()
	default:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}

		return nil
	}
}

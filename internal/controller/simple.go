package controller

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"eto.dev/pkg/eto/internal/domain"
	m "eto.dev/pkg/eto/internal/model"
)

// SimpleUI prints tables through the cobra command's output.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
	styles labelStyles
}

type labelStyles struct {
	title  lipgloss.Style
	add    lipgloss.Style
	change lipgloss.Style
	remove lipgloss.Style
	warn   lipgloss.Style
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, styled bool) *SimpleUI {
	renderer := lipgloss.NewRenderer(cmd.OutOrStdout())

	return &SimpleUI{
		cmd:    cmd,
		styled: styled,
		styles: labelStyles{
			title:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
			add:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
			change: renderer.NewStyle().Foreground(lipgloss.Color("3")),
			remove: renderer.NewStyle().Foreground(lipgloss.Color("1")),
			warn:   renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
	}
}

// DisplaySnapshot prints every tracked file with its digest.
func (s *SimpleUI) DisplaySnapshot(root m.Path, snapshot m.Snapshot) error {
	s.printf("%s %s (version %s)\n", s.label(s.styles.title, "Snapshot"), root, snapshot.Version)

	paths := make([]string, 0, len(snapshot.Files))
	for rel := range snapshot.Files {
		paths = append(paths, string(rel))
	}

	sort.Strings(paths)

	rows := make([][]string, 0, len(paths))
	for _, rel := range paths {
		rows = append(rows, []string{rel, snapshot.Files[m.RelPath(rel)]})
	}

	s.printf("\n%s", renderTable(
		[]string{"Path", "SHA-256"},
		rows,
		[]string{fmt.Sprintf("Total Files %d", len(paths)), ""},
	))

	return nil
}

// DisplayDiff prints the file operations between two states, followed by
// unified diffs when textDiffs is not nil.
func (s *SimpleUI) DisplayDiff(diff m.Diff, textDiffs []m.TextDiff) error {
	s.printf("%s %s -> %s\n", s.label(s.styles.title, "Diff"), diff.OldVersion, diff.NewVersion)
	s.printDiffTable(diff)

	for _, textDiff := range textDiffs {
		if textDiff.Binary {
			s.printf("Binary files a/%s and b/%s differ\n", textDiff.Path, textDiff.Path)
			continue
		}

		s.printf("%s", textDiff.Unified)
	}

	return nil
}

// DisplayManifest prints the header of a package.
func (s *SimpleUI) DisplayManifest(path m.Path, manifest m.Manifest) error {
	s.printf("%s %s\n", s.label(s.styles.title, "Package"), path)
	s.printf("format %s, update %s -> %s\n", manifest.Version, manifest.Diff.OldVersion, manifest.Diff.NewVersion)
	s.printDiffTable(manifest.Diff)

	return nil
}

// DisplayPackageCreated prints a one line summary of a freshly built package.
func (s *SimpleUI) DisplayPackageCreated(path m.Path, diff m.Diff) error {
	s.printf("%s %s (%s -> %s): %d added, %d changed, %d deleted\n",
		s.label(s.styles.title, "Created"), path, diff.OldVersion, diff.NewVersion,
		len(diff.Add), len(diff.Change), len(diff.Delete))

	return nil
}

// DisplayApplyReport prints what a patch did to target.
func (s *SimpleUI) DisplayApplyReport(target m.Path, report m.ApplyReport) error {
	s.printf("%s %s: %d written, %d deleted\n",
		s.label(s.styles.title, "Patched"), target, len(report.Written), len(report.Deleted))

	for _, warning := range report.Warnings {
		s.printf("%s %v\n", s.label(s.styles.warn, "warning:"), warning)
	}

	return nil
}

// DisplayUpdateReport prints the outcome of a self-update run.
func (s *SimpleUI) DisplayUpdateReport(request domain.UpdateRequest, report domain.UpdateReport) error {
	if !report.Applied {
		s.printf("%s %s was not applied\n", s.label(s.styles.warn, "Update"), request.Package)
		return nil
	}

	if err := s.DisplayApplyReport(request.Target, report.Apply); err != nil {
		return err
	}

	if report.Launched && request.OnComplete != nil {
		s.printf("%s %s\n", s.label(s.styles.title, "Launched"), request.OnComplete.Path)
	}

	return nil
}

func (s *SimpleUI) printDiffTable(diff m.Diff) {
	rows := make([][]string, 0, len(diff.Add)+len(diff.Change)+len(diff.Delete))
	rows = appendOpRows(rows, s.label(s.styles.add, "add"), diff.Add)
	rows = appendOpRows(rows, s.label(s.styles.change, "change"), diff.Change)
	rows = appendOpRows(rows, s.label(s.styles.remove, "delete"), diff.Delete)

	if len(rows) == 0 {
		s.printf("no changes\n")
		return
	}

	s.printf("\n%s", renderTable(
		[]string{"Op", "Path"},
		rows,
		[]string{"Total", fmt.Sprintf("%d", len(rows))},
	))
}

func appendOpRows(rows [][]string, op string, paths []m.RelPath) [][]string {
	for _, rel := range paths {
		rows = append(rows, []string{op, string(rel)})
	}

	return rows
}

func renderTable(header []string, rows [][]string, footer []string) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
	table.AppendBulk(rows)
	table.SetFooter(footer)
	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) label(style lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}

	return style.Render(text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

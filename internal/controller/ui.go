// Package controller renders engine results for the eto command line.
package controller

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eto.dev/pkg/eto/internal/domain"
	m "eto.dev/pkg/eto/internal/model"
)

// Format selects how results are rendered.
type Format string

// Available output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value. An empty value selects FormatTable.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}

	return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", value)
}

// UI defines how command results are shown to the user.
type UI interface {
	DisplaySnapshot(root m.Path, snapshot m.Snapshot) error
	DisplayDiff(diff m.Diff, textDiffs []m.TextDiff) error
	DisplayManifest(path m.Path, manifest m.Manifest) error
	DisplayPackageCreated(path m.Path, diff m.Diff) error
	DisplayApplyReport(target m.Path, report m.ApplyReport) error
	DisplayUpdateReport(request domain.UpdateRequest, report domain.UpdateReport) error
}

// NewUI returns the UI for format writing to cmd's output. Tables get styled
// section labels only when styled is set.
func NewUI(cmd *cobra.Command, format Format, styled bool) UI {
	switch format {
	case FormatJSON, FormatYAML:
		return NewStructuredUI(cmd, format)
	default:
		return NewSimpleUI(cmd, styled)
	}
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

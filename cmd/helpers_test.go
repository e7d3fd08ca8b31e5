package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"eto.dev/pkg/eto/internal/domain"
)

// execute runs sub under a fresh root command with w as the engine. A nil w
// lets the command build the real engine from configuration.
func execute(t *testing.T, w domain.Workflow, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = w
	t.Cleanup(func() { workflow = originalWorkflow })

	args = append(args, "--"+logFileFlagName, filepath.Join(t.TempDir(), defaultLogFilename))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

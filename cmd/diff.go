package cmd

import (
	"github.com/spf13/cobra"

	m "eto.dev/pkg/eto/internal/model"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	var (
		oldDir, newDir string
		unified        bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show the difference between two tracked directories",
		Long: `Show which files were added, changed and deleted between two versions of a
tracked directory without writing a package. With --unified, changed text
files are printed as unified diffs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui, err := newCommandUI(cmd)
			if err != nil {
				return err
			}

			w := currentWorkflow()

			diff, err := w.DiffDirectories(m.Path(oldDir), m.Path(newDir))
			if err != nil {
				return err
			}

			var textDiffs []m.TextDiff
			if unified {
				textDiffs, err = w.TextDiffs(m.Path(oldDir), m.Path(newDir), diff)
				if err != nil {
					return err
				}
			}

			return ui.DisplayDiff(diff, textDiffs)
		},
	}

	cmd.Flags().StringVarP(&oldDir, "old", "a", "", "directory holding the old version")
	cmd.Flags().StringVarP(&newDir, "new", "b", "", "directory holding the new version")
	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "print unified diffs of changed text files")
	cobra.CheckErr(cmd.MarkFlagRequired("old"))
	cobra.CheckErr(cmd.MarkFlagRequired("new"))
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

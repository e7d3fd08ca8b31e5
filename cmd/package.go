package cmd

import (
	"github.com/spf13/cobra"

	m "eto.dev/pkg/eto/internal/model"
)

const packageLongDescription = `Compare two versions of a tracked directory and write every added or
changed file, plus the list of deleted files, into a single package.

The old and new directories must both contain an eto.json marker. The
package only applies to installations whose marker version matches the old
directory.`

// packageCmd represents the package command.
var packageCmd = newPackageCmd()

func newPackageCmd() *cobra.Command {
	var oldDir, newDir, output string

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Create a package from the difference of two directories",
		Long:  packageLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui, err := newCommandUI(cmd)
			if err != nil {
				return err
			}

			diff, err := currentWorkflow().BuildPackage(m.Path(oldDir), m.Path(newDir), m.Path(output))
			if err != nil {
				return err
			}

			return ui.DisplayPackageCreated(m.Path(output), diff)
		},
	}

	cmd.Flags().StringVarP(&oldDir, "old", "a", "", "directory holding the old version")
	cmd.Flags().StringVarP(&newDir, "new", "b", "", "directory holding the new version")
	cmd.Flags().StringVarP(&output, "output", "o", "", "package file to write (e.g. update.etopack)")
	cobra.CheckErr(cmd.MarkFlagRequired("old"))
	cobra.CheckErr(cmd.MarkFlagRequired("new"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(packageCmd)
}

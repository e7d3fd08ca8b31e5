package cmd

import (
	"github.com/spf13/cobra"

	m "eto.dev/pkg/eto/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	var packagePath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the contents of a package",
		Long:  "Print the versions a package moves between and the files it adds, changes and deletes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui, err := newCommandUI(cmd)
			if err != nil {
				return err
			}

			manifest, err := currentWorkflow().ListPackage(m.Path(packagePath))
			if err != nil {
				return err
			}

			return ui.DisplayManifest(m.Path(packagePath), manifest)
		},
	}

	cmd.Flags().StringVarP(&packagePath, packageFlagName, "p", "", "package file to list")
	cobra.CheckErr(cmd.MarkFlagRequired(packageFlagName))
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}

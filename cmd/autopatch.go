package cmd

import (
	"github.com/spf13/cobra"

	m "eto.dev/pkg/eto/internal/model"
)

// autoPatchCmd represents the auto-patch command.
var autoPatchCmd = newAutoPatchCmd()

func newAutoPatchCmd() *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "auto-patch",
		Short: "Find a package in the current directory and apply it there",
		Long: `Patch the current directory with the one package matching --package
(default from package.pattern, "./*.etopack") and delete the package once it
has been applied. Intended to be run from a script or by a program updating
itself; copy eto to a temporary location first so it can update itself too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, &flags, m.Path("."), true)
		},
	}

	flags.register(cmd)
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(autoPatchCmd)
}

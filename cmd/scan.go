package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "eto.dev/pkg/eto/internal/model"
)

const scanWorkersFlagName = "workers"

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Print the tracked files of a directory and their hashes",
		Long:  "Scan a tracked directory (default: current directory) the way package and apply see it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui, err := newCommandUI(cmd)
			if err != nil {
				return err
			}

			root := m.Path(".")
			if len(args) == 1 {
				root = m.Path(args[0])
			}

			snapshot, err := currentWorkflow().ScanDirectory(root)
			if err != nil {
				return err
			}

			return ui.DisplaySnapshot(root, snapshot)
		},
	}

	cmd.Flags().Int(scanWorkersFlagName, viper.GetInt(scanWorkersKey), "number of files hashed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(scanWorkersFlagName), scanWorkersKey)
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

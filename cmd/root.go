// Package cmd provides the root command and CLI setup for eto.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"eto.dev/pkg/eto/internal/adapter"
	"eto.dev/pkg/eto/internal/controller"
	"eto.dev/pkg/eto/internal/domain"
)

var fsAdapter adapter.TreeFSAdapter

// workflow is built on first use from the loaded configuration. Tests
// replace it with a mock.
var workflow domain.Workflow

// logFileFlag overrides log.filename for a single run.
var logFileFlag string

// verboseFlag switches logging to debug level.
var verboseFlag bool

func init() {
	fsAdapter = adapter.NewLocalTreeFSAdapter()
}

const rootLongDescription = `Eto builds and applies delta packages for self-updating software.

A tracked directory carries an eto.json marker with its version and ignore
patterns. "eto package" captures the difference between two versions of such
a directory in a single .etopack file, and "eto apply" brings an installed
copy of the old version up to the new one.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "eto",
		Short:        "Directory delta packages for self-updating software",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := configureLogger(cmd.ErrOrStderr(), logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
			if configErr != nil {
				logger.Error("invalid configuration", "error", configErr)
				return configErr
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename, eto.log)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// currentWorkflow returns the engine, building it from configuration on first use.
func currentWorkflow() domain.Workflow {
	if workflow == nil {
		processAdapter := adapter.NewLocalProcessAdapter(viper.GetDuration(applyPollIntervalKey))
		workflow = domain.NewWorkflow(fsAdapter, processAdapter, globalLogger, workflowOptions())
	}

	return workflow
}

// newCommandUI returns the UI for cmd honoring its --format flag when it has one.
func newCommandUI(cmd *cobra.Command) (controller.UI, error) {
	value := ""
	if flag := cmd.Flags().Lookup(formatFlagName); flag != nil {
		value = flag.Value.String()
	}

	format, err := controller.ParseFormat(value)
	if err != nil {
		return nil, err
	}

	return controller.NewUI(cmd, format, controller.IsTTY(os.Stdout)), nil
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String(formatFlagName, string(controller.FormatTable), "output format: table, json or yaml")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eto.dev/pkg/eto/internal/domain"
	m "eto.dev/pkg/eto/internal/model"
)

const applyLongDescription = `Apply a package to a target directory.

The package may be given as a glob pattern (for example "*.etopack"); it
must match exactly one file. Intended to be called by a program updating
itself: copy eto to a temporary location, start it with --wait-for set to
the program's pid and --on-complete set to the program's path, then exit.`

// updateFlags are shared by apply and auto-patch.
type updateFlags struct {
	pattern       string
	waitFor       int32
	onComplete    string
	onCompleteArg []string
	waitTimeout   time.Duration
}

func (f *updateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.pattern, packageFlagName, "p", "", "package file or glob pattern (default from package.pattern)")
	cmd.Flags().Int32Var(&f.waitFor, "wait-for", 0, "pid of a process to wait for before applying")
	cmd.Flags().StringVar(&f.onComplete, "on-complete", "", "program to start once the package is applied")
	cmd.Flags().StringArrayVar(&f.onCompleteArg, "on-complete-arg", nil, "argument for --on-complete (can be repeated)")
	cmd.Flags().DurationVar(&f.waitTimeout, "wait-timeout", 0, "give up waiting for --wait-for after this long (0 waits forever)")
}

// packagePattern returns --package, falling back to the configured pattern.
func (f *updateFlags) packagePattern() string {
	if f.pattern != "" {
		return f.pattern
	}

	return viper.GetString(packagePatternKey)
}

// request builds the update request. Unset optional flags leave the
// matching request fields nil.
func (f *updateFlags) request(cmd *cobra.Command, packagePath, target m.Path) domain.UpdateRequest {
	request := domain.UpdateRequest{Package: packagePath, Target: target}

	if cmd.Flags().Changed("wait-for") {
		pid := f.waitFor
		request.WaitFor = &pid
	}

	if f.onComplete != "" {
		request.OnComplete = &m.LaunchSpec{Path: f.onComplete, Args: f.onCompleteArg}
	}

	return request
}

// runUpdate resolves the package, runs the self-update and reports it.
// The package is removed only once it has been applied.
func runUpdate(cmd *cobra.Command, flags *updateFlags, target m.Path, removePackage bool) error {
	ui, err := newCommandUI(cmd)
	if err != nil {
		return err
	}

	w := currentWorkflow()

	packagePath, err := w.ResolvePackage(flags.packagePattern())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flags.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.waitTimeout)

		defer cancel()
	}

	request := flags.request(cmd, packagePath, target)
	report, runErr := w.RunSelfUpdate(ctx, request)

	if report.Applied && removePackage {
		if err := fsAdapter.Remove(packagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			globalLoggerOrDefault().Warn("failed to remove package", "path", packagePath, "error", err)
		}
	}

	if err := ui.DisplayUpdateReport(request, report); err != nil {
		return err
	}

	return runErr
}

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	var (
		flags         updateFlags
		target        string
		removePackage bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a package to a directory",
		Long:  applyLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, &flags, m.Path(target), removePackage)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", "tracked directory to patch")
	cmd.Flags().BoolVar(&removePackage, "remove-package", false, "delete the package file once it has been applied")
	cobra.CheckErr(cmd.MarkFlagRequired("target"))
	addFormatFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

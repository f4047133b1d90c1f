package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/s3up/internal/setup"
)

type CheckOptions struct {
	Root       string
	DepsDir    string
	ConfigFile string

	iooption.IOStreams
}

var (
	checkLong = templates.LongDesc(`
		Check that the working directory is ready for uploads.

		If the dependency directory is missing an error is printed and the
		command stops, still exiting with status 0. Otherwise an empty
		configuration file is created when one does not already exist.`)

	checkExample = templates.Examples(`
		# Check the current directory
		s3up check

		# Check another directory with a different dependency folder
		s3up check --root ./deploy --deps-dir third_party`)
)

func NewCheckOptions(streams iooption.IOStreams) *CheckOptions {
	return &CheckOptions{
		IOStreams: streams,
	}
}

func NewCheckCommand(o *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Check dependencies and scaffold the configuration file",
		Long:    checkLong,
		Example: checkExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.Root, "root", "r", "", "Directory to check (default: current directory)")
	cmd.Flags().StringVar(&o.DepsDir, "deps-dir", setup.DefaultDepsDir, "Dependency directory expected under the root")
	cmd.Flags().StringVar(&o.ConfigFile, "config-file", setup.DefaultConfigFile, "Configuration file created under the root when missing")

	return cmd
}

func (o *CheckOptions) Complete(cmd *cobra.Command, args []string) error {
	if o.Root != "" {
		return nil
	}
	path, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}
	o.Root = path
	return nil
}

func (o *CheckOptions) Validate() error {
	if filepath.IsAbs(o.DepsDir) || filepath.IsAbs(o.ConfigFile) {
		return fmt.Errorf("deps-dir and config-file must be relative to the root")
	}
	return nil
}

func (o *CheckOptions) Run() error {
	report, err := setup.Check(o.Root, setup.Options{
		DepsDir:    o.DepsDir,
		ConfigFile: o.ConfigFile,
	})
	if err != nil {
		return err
	}

	if report.DependenciesMissing {
		fmt.Fprintf(o.ErrOut, "ERROR: Dependency folder %q missing. Try running `go mod vendor`\n", o.DepsDir)
		return nil
	}
	if report.ConfigCreated {
		fmt.Fprintf(o.Out, "Creating template %s file\n", o.ConfigFile)
	}
	return nil
}

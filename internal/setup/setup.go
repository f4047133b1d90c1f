// Package setup checks that a working directory is ready for the uploader:
// the dependency directory must exist and a configuration file is created
// when missing.
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DefaultDepsDir is the dependency directory expected under the root.
	DefaultDepsDir = "vendor"

	// DefaultConfigFile is the configuration file scaffolded under the root.
	DefaultConfigFile = ".env"
)

// Options names the paths checked, relative to the root.
type Options struct {
	DepsDir    string
	ConfigFile string
}

// Report describes what Check found and did.
type Report struct {
	// DependenciesMissing is set when the dependency directory does not
	// exist. No further checks run in that case.
	DependenciesMissing bool

	// ConfigCreated is set when an empty configuration file was written.
	ConfigCreated bool

	// DepsPath and ConfigPath are the inspected paths joined onto the root.
	DepsPath   string
	ConfigPath string
}

// Check inspects root. A missing dependency directory stops the check without
// touching the filesystem; a missing configuration file is created empty.
func Check(root string, opts Options) (*Report, error) {
	if opts.DepsDir == "" {
		opts.DepsDir = DefaultDepsDir
	}
	if opts.ConfigFile == "" {
		opts.ConfigFile = DefaultConfigFile
	}

	report := &Report{
		DepsPath:   filepath.Join(root, opts.DepsDir),
		ConfigPath: filepath.Join(root, opts.ConfigFile),
	}

	exists, err := pathExists(report.DepsPath)
	if err != nil {
		return nil, fmt.Errorf("setup: failed to stat %q: %w", report.DepsPath, err)
	}
	if !exists {
		report.DependenciesMissing = true
		return report, nil
	}

	exists, err = pathExists(report.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("setup: failed to stat %q: %w", report.ConfigPath, err)
	}
	if exists {
		return report, nil
	}

	// O_EXCL so a file created between the stat and here is left alone.
	f, err := os.OpenFile(report.ConfigPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("setup: failed to create %q: %w", report.ConfigPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("setup: failed to close %q: %w", report.ConfigPath, err)
	}
	report.ConfigCreated = true

	return report, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

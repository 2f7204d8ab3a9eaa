package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/notchctl/notch/pkg/notch"
)

var (
	gitCommit  string
	versionTag string
	buildType  string

	verbose   bool
	configDir string
)

func init() {
	pflag.BoolVarP(&verbose, "verbose", "v", false, "show verbose logs (useful for debugging pointer input)")
	pflag.StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")
	pflag.Parse()
}

func main() {

	// first we need a logger
	logger, err := notch.NewLogger(buildType)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}

	named := logger.Named("main")
	named.Debug("Created logger")

	named.Infow("Version info",
		"gitCommit", gitCommit,
		"versionTag", versionTag,
		"buildType", buildType)

	// provide a fair warning if the user's running in verbose mode
	if verbose {
		named.Debug("Verbose flag provided, all log messages will be shown")
	}

	// create the notch instance
	n, err := notch.NewNotch(logger, configDir, verbose)
	if err != nil {
		named.Fatalw("Failed to create notch object", "error", err)
	}

	// if injected by build process, set version info to show up in the tray
	if buildType != "" && (versionTag != "" || gitCommit != "") {
		identifier := gitCommit
		if versionTag != "" {
			identifier = versionTag
		}

		versionString := fmt.Sprintf("Version %s-%s", buildType, identifier)
		n.SetVersion(versionString)
	}

	// onwards, to glory
	if err = n.Initialize(); err != nil {
		named.Fatalw("Failed to initialize notch", "error", err)
	}
}

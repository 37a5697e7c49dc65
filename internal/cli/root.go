// Package cli wires the cmat commands: workspace scaffolding, target
// management, and the transit-timing analysis pipeline.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/infra/fsworkspace"
	"github.com/troyzx/cmat/internal/infra/logger"
	"github.com/troyzx/cmat/internal/infra/workspacefinder"
	"github.com/troyzx/cmat/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "cmat",
		Short:        "CMAT — companion mass bounds from transit timing variations",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			finder := workspacefinder.NewFinder()

			logRoot := wd
			if root, ferr := finder.FindRoot(wd); ferr == nil && root != "" {
				logRoot = root
			}

			cleanup, _ := logger.Setup(logger.Config{
				Root:  logRoot,
				Debug: debug,
			})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			deps := tui.Deps{
				WorkspaceLocator:     finder,
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Logger:               logger.L(),
				Debug:                debug,
			}

			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .cmat/logs/cmat.log")

	cmd.AddCommand(
		initCmd(),
		targetsCmd(),
		fetchCmd(),
		validateCmd(),
		fitCmd(),
		ttvCmd(),
		constrainCmd(),
		reportCmd(),
		versionCmd(),
	)
	return cmd
}

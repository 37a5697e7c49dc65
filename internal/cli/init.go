package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/infra/fsworkspace"
	"github.com/troyzx/cmat/internal/ports"
)

func initCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [path]",
		Short: "Scaffold a CMAT workspace (targets/, data/, results/, cmat.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", root, err)
			}

			init := fsworkspace.NewInitializer()
			if err := init.Init(ports.WorkspaceSpec{Root: abs}, force); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Workspace initialized at %s\n", abs)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing template files")
	return c
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string
	var target string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a target and its light-curve data (no fitting)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			targetPath, err := resolveTargetPath(ws, target)
			if err != nil {
				return err
			}

			uc := usecase.NewValidateTarget(ws.targets, ws.loaders)
			if err := uc.Execute(cmd.Context(), ws.root, targetPath); err != nil {
				return err
			}

			fmt.Println("OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&target, "target", "t", "", "Target name or path (required)")

	_ = c.MarkFlagRequired("target")
	return c
}

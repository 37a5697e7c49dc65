package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/usecase"
)

func fetchCmd() *cobra.Command {
	var workspace string
	var force bool

	c := &cobra.Command{
		Use:   "fetch <planet name>",
		Short: "Fetch system parameters from exo.MAST and write a target file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			planet := strings.Join(args, " ")

			uc := usecase.NewFetchTarget(ws.archive, ws.writer)
			target, path, err := uc.Execute(cmd.Context(), ws.root, planet, force)
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(ws.root, path)
			if relErr != nil {
				rel = path
			}

			fmt.Printf("Target:  %s (TIC %d)\n", target.Name, target.TIC)
			fmt.Printf("Period:  %.6f ± %.2g d\n", target.Ephemeris.Period.N, target.Ephemeris.Period.S)
			fmt.Printf("T0:      %.6f ± %.2g BJD\n", target.Ephemeris.ZeroEpoch.N, target.Ephemeris.ZeroEpoch.S)
			fmt.Printf("Star:    %.3f ± %.3f Msun\n", target.Star.MassMsun.N, target.Star.MassMsun.S)
			fmt.Printf("Written: %s\n", rel)
			fmt.Println("\nAdd light-curve files under data/ and list them in the target's `data` section.")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing target file")
	return c
}

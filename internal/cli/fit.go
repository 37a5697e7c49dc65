package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/render"
	"github.com/troyzx/cmat/internal/usecase"
)

func fitCmd() *cobra.Command {
	var workspace string
	var target string
	var format string

	c := &cobra.Command{
		Use:   "fit",
		Short: "Fit per-epoch mid-transit times for a target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			targetPath, err := resolveTargetPath(ws, target)
			if err != nil {
				return err
			}

			t, err := ws.targets.LoadTarget(targetPath)
			if err != nil {
				return err
			}

			curve, err := usecase.LoadTargetCurve(cmd.Context(), ws.root, t, ws.loaders)
			if err != nil {
				return err
			}

			extract, _, _ := ws.stages()
			transits, skipped, err := extract.Execute(cmd.Context(), t, curve)
			if err != nil {
				return err
			}

			return printTransits(os.Stdout, t.Name, transits, skipped, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&target, "target", "t", "", "Target name or path (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("target")
	return c
}

func printTransits(w io.Writer, name string, transits []domain.TransitTime, skipped []domain.SkippedEpoch, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"target":   name,
			"transits": transits,
			"skipped":  skipped,
		})
	case "pretty", "":
		fmt.Fprintf(w, "Target: %s\n\n", name)
		fmt.Fprint(w, render.TransitTable(transits))
		if len(skipped) > 0 {
			fmt.Fprintf(w, "\nskipped epochs:\n")
			for _, s := range skipped {
				fmt.Fprintf(w, "  %d: %s\n", s.Epoch, s.Reason)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

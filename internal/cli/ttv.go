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

func ttvCmd() *cobra.Command {
	var workspace string
	var target string
	var format string

	c := &cobra.Command{
		Use:   "ttv",
		Short: "Compute timing residuals against a refitted linear ephemeris",
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

			extract, ttvStage, _ := ws.stages()
			transits, _, err := extract.Execute(cmd.Context(), t, curve)
			if err != nil {
				return err
			}

			series, err := ttvStage.Execute(cmd.Context(), t.Ephemeris, transits)
			if err != nil {
				return err
			}

			return printTTV(os.Stdout, t.Name, series, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&target, "target", "t", "", "Target name or path (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("target")
	return c
}

func printTTV(w io.Writer, name string, series domain.TTVSeries, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"target": name,
			"ttv":    series,
		})
	case "pretty", "":
		fmt.Fprintf(w, "Target: %s\n", name)
		fmt.Fprintf(w, "Refit:  P = %.8f ± %.2g d, T0 = %.6f ± %.2g BJD\n\n",
			series.Refined.Period.N, series.Refined.Period.S,
			series.Refined.ZeroEpoch.N, series.Refined.ZeroEpoch.S)
		fmt.Fprint(w, render.TTVPlot(series))
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

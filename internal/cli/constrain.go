package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/infra/csvcurve"
	"github.com/troyzx/cmat/internal/ports"
	"github.com/troyzx/cmat/internal/render"
)

func constrainCmd() *cobra.Command {
	var workspace string
	var target string
	var ttvFile string
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "constrain",
		Short: "Run the full pipeline and bound the unseen companion's mass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			targetPath, err := resolveTargetPath(ws, target)
			if err != nil {
				return err
			}

			store := ws.store
			if noSave {
				store = nil
			}

			if ttvFile != "" {
				return constrainFromTTVFile(cmd, ws, store, targetPath, ttvFile, format)
			}

			uc := ws.analyze(store)
			run, runID, err := uc.Execute(cmd.Context(), ws.root, targetPath)
			if err != nil {
				// A failed save still leaves a printable run.
				_ = printRun(os.Stdout, run, runID, format)
				return err
			}

			return printRun(os.Stdout, run, runID, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&target, "target", "t", "", "Target name or path (required)")
	c.Flags().StringVar(&ttvFile, "ttv-file", "", "Pre-computed TTV CSV (epoch, ttv_s, err_s); skips the fitting stages")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save the run artifact under results/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("target")
	return c
}

// constrainFromTTVFile bounds the companion mass from an externally
// measured timing series, without fitting any light curve.
func constrainFromTTVFile(cmd *cobra.Command, ws *workspaceCtx, store ports.ResultStore, targetPath, ttvFile, format string) error {
	t, err := ws.targets.LoadTarget(targetPath)
	if err != nil {
		return err
	}

	path := ttvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws.root, path)
	}
	series, err := csvcurve.NewLoader().LoadTTV(path)
	if err != nil {
		return err
	}
	series.Refined = t.Ephemeris

	_, _, constrain := ws.stages()
	grid, err := constrain.Execute(cmd.Context(), t, series)
	if err != nil {
		return err
	}

	run := domain.AnalysisRun{
		ID:          uuid.NewString(),
		TargetName:  t.Name,
		TargetPath:  targetPath,
		StartedAt:   time.Now(),
		EndedAt:     time.Now(),
		TTV:         series,
		Constraints: grid,
	}

	var runID string
	if store != nil {
		runID, err = store.SaveRun(run)
		if err != nil {
			_ = printRun(os.Stdout, run, runID, format)
			return err
		}
	}
	return printRun(os.Stdout, run, runID, format)
}

func printRun(w io.Writer, run domain.AnalysisRun, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run_id": runID,
			"run":    run,
		})
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.AnalysisRun, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Target:   %s\n", run.TargetName)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Transits (%d fitted, %d skipped):\n", len(run.Transits), len(run.Skipped))
	fmt.Fprint(w, render.TransitTable(run.Transits))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Timing residuals:")
	fmt.Fprint(w, render.TTVPlot(run.TTV))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Mass constraints:")
	fmt.Fprint(w, render.ConstraintTable(run.Constraints))
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var workspace string
	var format string

	c := &cobra.Command{
		Use:   "report [run-id]",
		Short: "List saved runs, or show one run in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				runs, err := ws.store.ListRuns()
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Println("(no saved runs)")
					return nil
				}
				for _, r := range runs {
					best := "no constraint"
					if b, ok := r.Constraints.Best(); ok {
						best = fmt.Sprintf("M < %.3g M_Jup", b.UpperBoundMJup)
					}
					fmt.Printf("- %s  %s  %d transits  %s\n",
						r.ID, r.StartedAt.Format(time.RFC3339), len(r.Transits), best)
				}
				return nil
			}

			run, err := ws.store.LoadRun(args[0])
			if err != nil {
				return err
			}
			return printRun(cmd.OutOrStdout(), run, run.ID, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

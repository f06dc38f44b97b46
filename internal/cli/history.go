package cli

import (
	"github.com/spf13/cobra"

	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent screening runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store is not available")
			}
			scans, err := app.Store.RecentScans(cmd.Context(), limit)
			if err != nil {
				return errors.Wrap(err, "load scan history")
			}
			if output.IsJSON() {
				return output.JSON(scans)
			}
			if len(scans) == 0 {
				output.Println("no screening runs recorded yet")
				return nil
			}
			for _, s := range scans {
				output.Header("%s universe %d, candidates %d, matches %d",
					s.RanAt.Format("2006-01-02 15:04"), s.Universe, s.Candidates, len(s.Matches))
				for _, m := range s.Matches {
					output.Printf("    %s (%s): %s\n", m.Name, m.Symbol, m.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")

	return cmd
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/feed"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
)

func newFetchCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "fetch [symbols...]",
		Short: "Fetch daily bars and warm the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runFetch(cmd.Context(), NewOutput(cmd), args, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "history depth in days (default: feed.history_days)")

	return cmd
}

func (a *App) runFetch(ctx context.Context, output *Output, symbols []string, days int) error {
	logger := logging.WithStage(a.Logger, "fetch")

	var u *feed.Universe
	if len(symbols) > 0 {
		u = feed.NewUniverse(symbols, nil)
	} else {
		var err error
		u, err = a.universe()
		if err != nil {
			return errors.Wrap(err, "load universe")
		}
	}
	if len(u.Symbols) == 0 {
		return errors.New("nothing to fetch")
	}
	if days <= 0 {
		days = a.Config.Feed.HistoryDays
	}

	series := feed.FetchAll(ctx, a.Provider, u, days, a.Config.Feed.Workers, logger)
	for _, s := range series {
		last := "n/a"
		if b, ok := s.Last(); ok {
			last = b.Date.Format("2006-01-02")
		}
		output.Printf("%-12s %4d bars, last %s\n", s.Symbol, s.Len(), last)
	}
	if len(series) < len(u.Symbols) {
		output.Warning("fetched %d/%d symbols", len(series), len(u.Symbols))
	} else {
		output.Success("fetched %d/%d symbols", len(series), len(u.Symbols))
	}
	return nil
}

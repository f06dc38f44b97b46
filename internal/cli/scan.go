package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/funnel"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/pattern"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/similarity"
	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
	"github.com/jujojujoju/auto-chart-analysis/internal/notify"
	"github.com/jujojujoju/auto-chart-analysis/internal/store"
)

func newScanCmd(app *App) *cobra.Command {
	var (
		dryRun     bool
		volumeTop  int
		withScores bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the daily screen over the configured universe",
		Long: `Fetches daily bars for every symbol in the universe, enriches them
with moving averages and the oscillator, bounds the set with the funnel,
then classifies each surviving candidate through the pattern gates.
Matches are persisted and, unless --dry-run is set, delivered through the
configured notification channels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runScan(cmd.Context(), NewOutput(cmd), dryRun, volumeTop, withScores)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "skip notification delivery")
	cmd.Flags().IntVar(&volumeTop, "volume-top", 10, "number of buying-pressure leaders to report")
	cmd.Flags().BoolVar(&withScores, "scores", false, "print per-match similarity scores")

	return cmd
}

func (a *App) runScan(ctx context.Context, output *Output, dryRun bool, volumeTop int, withScores bool) error {
	start := time.Now()
	logger := logging.WithStage(a.Logger, "scan")

	u, err := a.universe()
	if err != nil {
		return errors.Wrap(err, "load universe")
	}
	if len(u.Symbols) == 0 {
		return errors.New("universe is empty, configure universe.symbols or universe.file")
	}
	logger.Info().Int("universe", len(u.Symbols)).Msg("starting daily screen")

	series := a.loadEnriched(ctx, u)
	if len(series) == 0 {
		return errors.New("no series could be fetched")
	}

	f := funnel.New(a.Config.Funnel.FunnelConfig(), logger)
	candidates := f.Screen(ctx, series)

	matcher := pattern.NewMatcher(a.Config.Funnel.Workers, logger)
	matches := matcher.Filter(ctx, candidates, u.Names, a.Config.Pattern.ParamSet())
	for _, m := range matches {
		logging.LogMatch(logger, m.Symbol, m.Reason)
	}

	leaders := funnel.TopByBuyingPressure(series, u.Names, volumeTop, 20)

	report := &notify.Report{
		GeneratedAt:   start,
		UniverseSize:  len(series),
		Candidates:    len(candidates),
		Matches:       matches,
		VolumeLeaders: leaders,
	}

	if output.IsJSON() {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		output.Printf("%s", report.Format())
		if withScores {
			bySymbol := make(map[string]*models.Series, len(candidates))
			for _, c := range candidates {
				bySymbol[c.Symbol] = c.Series
			}
			for _, m := range matches {
				if s, ok := bySymbol[m.Symbol]; ok {
					output.Dim("  %s similarity %.2f", m.Symbol, similarity.Score(s))
				}
			}
		}
	}

	if a.Store != nil {
		rec := &store.ScanRecord{
			RanAt:      start,
			Universe:   len(series),
			Candidates: len(candidates),
			Matches:    matches,
		}
		if err := a.Store.SaveScan(ctx, rec); err != nil {
			logger.Warn().Err(err).Msg("failed to persist scan")
		}
	}

	if !dryRun && a.Notifier != nil {
		if err := a.Notifier.SendReport(ctx, report); err != nil {
			logger.Error().Err(err).Str("channel", a.Notifier.Name()).Msg("notification delivery failed")
		} else {
			output.Success("report delivered via %s", a.Notifier.Name())
		}
	}

	logger.Info().
		Int("matches", len(matches)).
		Dur("elapsed", time.Since(start)).
		Msg("daily screen complete")
	return nil
}

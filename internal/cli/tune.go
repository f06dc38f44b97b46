package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/funnel"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/pattern"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/tuner"
	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
	"github.com/jujojujoju/auto-chart-analysis/internal/store"
)

func newTuneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Search the relaxation ladder for the best gate thresholds",
		Long: `Walks the fixed parameter schedule from strict to relaxed, runs the
pattern gates over the funnel survivors at each step, and scores the matches
against the reference archetype. Stops early once the similarity thresholds
are met and reports the best parameter set seen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTune(cmd.Context(), NewOutput(cmd))
		},
	}
	return cmd
}

func (a *App) runTune(ctx context.Context, output *Output) error {
	start := time.Now()
	logger := logging.WithStage(a.Logger, "tune")

	u, err := a.universe()
	if err != nil {
		return errors.Wrap(err, "load universe")
	}
	if len(u.Symbols) == 0 {
		return errors.New("universe is empty, configure universe.symbols or universe.file")
	}

	series := a.loadEnriched(ctx, u)
	if len(series) == 0 {
		return errors.New("no series could be fetched")
	}

	f := funnel.New(a.Config.Funnel.FunnelConfig(), logger)
	candidates := f.Screen(ctx, series)

	matcher := pattern.NewMatcher(a.Config.Funnel.Workers, logger)
	ctrl := tuner.NewController(
		tuner.DefaultSchedule(),
		a.Config.Tuner.Thresholds(),
		matcher,
		nil, // default similarity scorer
		logger,
	)

	result, err := ctrl.Run(ctx, candidates, u.Names)
	if err != nil {
		return errors.Wrap(err, "parameter search")
	}

	if a.Store != nil {
		paramsJSON, err := json.Marshal(result.BestParams)
		if err != nil {
			return errors.Wrap(err, "encode best params")
		}
		rec := &store.TuningRecord{
			RanAt:      start,
			ParamsJSON: string(paramsJSON),
			BestAvg:    result.BestAvg,
			Iterations: result.Iterations,
			Reason:     string(result.Reason),
			MatchCount: len(result.BestMatches),
		}
		if err := a.Store.SaveTuningRun(ctx, rec); err != nil {
			logger.Warn().Err(err).Msg("failed to persist tuning run")
		}
	}

	if output.IsJSON() {
		return output.JSON(result)
	}

	output.Header("Parameter search: %s after %d iteration(s)", result.Reason, result.Iterations)
	output.Printf("best iteration %d, avg similarity %.3f, %d match(es)\n",
		result.BestIteration, result.BestAvg, len(result.BestMatches))

	pretty, err := json.MarshalIndent(result.BestParams, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode best params")
	}
	output.Printf("best parameters:\n%s\n", pretty)

	for i, m := range result.BestMatches {
		output.Printf("%2d. %s (%s): %s\n", i+1, m.Name, m.Symbol, m.Reason)
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("parameter search complete")
	return nil
}

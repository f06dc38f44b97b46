// Package tuner drives a bounded parameter search: each schedule entry is
// run through the pattern matcher, scored against the reference archetype,
// and the best-performing entry is kept, with early stop on convergence.
package tuner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/pattern"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/similarity"
	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Phase is a state of the search state machine.
type Phase string

const (
	PhaseInit      Phase = "INIT"
	PhaseIterating Phase = "ITERATING"
	PhaseEarlyStop Phase = "EARLY_STOP"
	PhaseExhausted Phase = "EXHAUSTED"
	PhaseDone      Phase = "DONE"
)

// Reason is why the search terminated.
type Reason string

const (
	ReasonEarlyStop Reason = "early_stop"
	ReasonExhausted Reason = "exhausted"
)

// Thresholds holds the similarity levels that trigger an early stop. The
// max threshold is the stricter single-match bar.
type Thresholds struct {
	Avg float64
	Max float64
}

// DefaultThresholds returns the standard convergence levels.
func DefaultThresholds() Thresholds {
	return Thresholds{Avg: 0.55, Max: 0.65}
}

// ScoreFunc scores one series against the reference archetype.
type ScoreFunc func(*models.Series) float64

// Controller walks a parameter schedule sequentially. Matcher and scorer
// calls within one iteration fan out across candidates, but iterations
// themselves never run in parallel: each best-state update depends on the
// previous one.
type Controller struct {
	schedule   Schedule
	thresholds Thresholds
	matcher    *pattern.Matcher
	score      ScoreFunc
	logger     zerolog.Logger
}

// Result is the search outcome handed to downstream reporting.
type Result struct {
	BestParams    pattern.ParamSet `json:"best_params"`
	BestMatches   []models.Match   `json:"best_matches"`
	BestAvg       float64          `json:"best_avg_similarity"`
	BestIteration int              `json:"best_iteration"`
	Iterations    int              `json:"iterations"`
	Reason        Reason           `json:"reason"`
}

// NewController creates a search controller. A nil score function defaults
// to the reference similarity scorer.
func NewController(schedule Schedule, thresholds Thresholds, matcher *pattern.Matcher, score ScoreFunc, logger zerolog.Logger) *Controller {
	if score == nil {
		score = similarity.Score
	}
	return &Controller{
		schedule:   schedule,
		thresholds: thresholds,
		matcher:    matcher,
		score:      score,
		logger:     logger,
	}
}

// Run executes the search over the candidate set. The best fields only ever
// improve: a later iteration replaces them only on a strictly greater
// average similarity, so ties keep the earlier iteration's result.
func (c *Controller) Run(ctx context.Context, cands []models.Candidate, names map[string]string) (*Result, error) {
	phase := PhaseInit
	sets := c.schedule.Params()
	if len(sets) == 0 {
		return nil, errors.ErrEmptySchedule
	}

	bySymbol := make(map[string]*models.Series, len(cands))
	for _, cand := range cands {
		bySymbol[cand.Symbol] = cand.Series
	}

	result := &Result{BestParams: pattern.Defaults()}
	phase = PhaseIterating

	for i, params := range sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iteration := i + 1
		result.Iterations = iteration

		matches := c.matcher.Filter(ctx, cands, names, params)
		if len(matches) == 0 {
			c.logger.Info().
				Int("iteration", iteration).
				Msg("no matches for parameter set, advancing")
			continue
		}

		avg, max := c.scoreMatches(matches, bySymbol)
		logging.LogIteration(c.logger, iteration, len(matches), avg, max)

		if avg > result.BestAvg {
			result.BestAvg = avg
			result.BestMatches = matches
			result.BestParams = params
			result.BestIteration = iteration
		}

		if avg >= c.thresholds.Avg || max >= c.thresholds.Max {
			phase = PhaseEarlyStop
			break
		}
	}

	if phase == PhaseEarlyStop {
		result.Reason = ReasonEarlyStop
	} else {
		phase = PhaseExhausted
		result.Reason = ReasonExhausted
	}

	phase = PhaseDone
	c.logger.Info().
		Str("phase", string(phase)).
		Str("reason", string(result.Reason)).
		Int("iterations", result.Iterations).
		Int("best_iteration", result.BestIteration).
		Float64("best_avg", result.BestAvg).
		Msg("Parameter search finished")
	return result, nil
}

func (c *Controller) scoreMatches(matches []models.Match, bySymbol map[string]*models.Series) (avg, max float64) {
	var sum float64
	n := 0
	for _, m := range matches {
		s, ok := bySymbol[m.Symbol]
		if !ok {
			continue
		}
		score := c.score(s)
		sum += score
		n++
		if score > max {
			max = score
		}
	}
	if n > 0 {
		avg = sum / float64(n)
	}
	return avg, max
}

package pattern

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Matcher evaluates candidate sets against one ParamSet at a time.
type Matcher struct {
	workers int
	logger  zerolog.Logger
}

// NewMatcher creates a batch matcher with a bounded worker pool.
func NewMatcher(workers int, logger zerolog.Logger) *Matcher {
	if workers <= 0 {
		workers = 4
	}
	return &Matcher{workers: workers, logger: logger}
}

type verdict struct {
	pass   bool
	reason string
}

// Filter evaluates every candidate against params and returns the matches in
// candidate order. Evaluation of one symbol is isolated: a panic while
// scoring it is logged and treated as a non-match, never aborting the rest
// of the universe.
func (m *Matcher) Filter(ctx context.Context, cands []models.Candidate, names map[string]string, params ParamSet) []models.Match {
	verdicts := make([]verdict, len(cands))

	var wg sync.WaitGroup
	work := make(chan int, len(cands))
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				verdicts[i] = m.evaluate(cands[i], params)
			}
		}()
	}
	for i := range cands {
		work <- i
	}
	close(work)
	wg.Wait()

	out := make([]models.Match, 0, len(cands))
	for i, v := range verdicts {
		if !v.pass {
			continue
		}
		sym := cands[i].Symbol
		name := names[sym]
		if name == "" {
			name = sym
		}
		out = append(out, models.Match{Symbol: sym, Name: name, Reason: v.reason})
	}
	return out
}

func (m *Matcher) evaluate(c models.Candidate, params ParamSet) (v verdict) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("symbol", c.Symbol).
				Str("panic", fmt.Sprint(r)).
				Msg("candidate evaluation failed")
			v = verdict{pass: false, reason: "evaluation failed"}
		}
	}()
	pass, reason := Evaluate(c.Series, params)
	return verdict{pass: pass, reason: reason}
}

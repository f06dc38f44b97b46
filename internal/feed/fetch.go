package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// FetchAll retrieves series for the whole universe over a bounded worker
// pool. Results come back in the universe's canonical symbol order with
// failed symbols dropped; a failure fetching one symbol never aborts the
// rest.
func FetchAll(ctx context.Context, provider BarProvider, u *Universe, days, workers int, logger zerolog.Logger) []*models.Series {
	if workers <= 0 {
		workers = 4
	}
	results := make([]*models.Series, len(u.Symbols))

	var wg sync.WaitGroup
	work := make(chan int, len(u.Symbols))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				symbol := u.Symbols[i]
				s, err := provider.Daily(ctx, symbol, days)
				if err != nil {
					logger.Warn().Str("symbol", symbol).Err(err).Msg("fetch failed, skipping symbol")
					continue
				}
				results[i] = s
			}
		}()
	}
	for i := range u.Symbols {
		work <- i
	}
	close(work)
	wg.Wait()

	out := make([]*models.Series, 0, len(results))
	for _, s := range results {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

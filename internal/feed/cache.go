package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
	"github.com/jujojujoju/auto-chart-analysis/internal/store"
)

// CachingProvider wraps a BarProvider with the SQLite bar cache. A symbol
// whose cache is current is served without a network call; a stale cache is
// refreshed and the merged series returned.
type CachingProvider struct {
	inner  BarProvider
	store  store.DataStore
	maxAge time.Duration
	logger zerolog.Logger
}

// NewCachingProvider creates a cache-backed provider. maxAge bounds how old
// the latest cached bar may be before a refresh.
func NewCachingProvider(inner BarProvider, dataStore store.DataStore, maxAge time.Duration, logger zerolog.Logger) *CachingProvider {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &CachingProvider{inner: inner, store: dataStore, maxAge: maxAge, logger: logger}
}

func (p *CachingProvider) Name() string { return p.inner.Name() + "+cache" }

// Daily serves the series from cache when fresh, otherwise fetches from the
// inner provider, upserts into the cache, and returns the merged history.
func (p *CachingProvider) Daily(ctx context.Context, symbol string, days int) (*models.Series, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	last, err := p.store.LastBarDate(ctx, symbol)
	if err == nil && !last.IsZero() && now.Sub(last) <= p.maxAge {
		bars, err := p.store.GetBars(ctx, symbol, from, now)
		if err == nil && len(bars) > 0 {
			return models.NewSeries(symbol, bars)
		}
	}

	fresh, err := p.inner.Daily(ctx, symbol, days)
	if err != nil {
		// Serve stale data over nothing.
		bars, cacheErr := p.store.GetBars(ctx, symbol, from, now)
		if cacheErr == nil && len(bars) > 0 {
			p.logger.Warn().Str("symbol", symbol).Err(err).Msg("fetch failed, serving stale cache")
			return models.NewSeries(symbol, bars)
		}
		return nil, err
	}

	if err := p.store.SaveBars(ctx, symbol, fresh.Bars); err != nil {
		p.logger.Warn().Str("symbol", symbol).Err(err).Msg("bar cache write failed")
	}
	return fresh, nil
}
